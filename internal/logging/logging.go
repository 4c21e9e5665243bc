// Package logging provides the leveled, structured logger used across
// rintty. A login manager owns the terminal it runs on, so the default sink
// is discard; a file sink is attached only when logging is requested.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// F represents a key-value pair in structured logging.
type F struct {
	Key   string
	Value any
}

// Field creates an F from a key-value pair.
func Field(key string, value any) F {
	return F{Key: key, Value: value}
}

// Logger provides leveled structured logging.
type Logger interface {
	Debug(msg string, fields ...F)
	Info(msg string, fields ...F)
	Warn(msg string, fields ...F)
	Error(msg string, err error, fields ...F)
	WithFields(fields ...F) Logger
}

// NoOp is a logger that discards all entries.
type NoOp struct{}

func (NoOp) Debug(string, ...F)        {}
func (NoOp) Info(string, ...F)         {}
func (NoOp) Warn(string, ...F)         {}
func (NoOp) Error(string, error, ...F) {}
func (n NoOp) WithFields(...F) Logger  { return n }

// Std writes structured log entries to a writer.
type Std struct {
	fields   []F
	minLevel Level
	logger   *log.Logger
}

// NewStd creates a logger with the given minimum level and writer. A nil
// writer discards everything.
func NewStd(minLevel Level, w io.Writer) *Std {
	if w == nil {
		w = io.Discard
	}
	return &Std{
		minLevel: minLevel,
		logger:   log.New(w, "", 0), // no prefix, we format our own
	}
}

func (s *Std) log(level Level, msg string, err error, fields ...F) {
	if !s.shouldLog(level) {
		return
	}

	all := append(append([]F{}, s.fields...), fields...)

	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", time.Now().Format(time.RFC3339)))
	parts = append(parts, fmt.Sprintf("[%s]", level))
	if err != nil {
		parts = append(parts, fmt.Sprintf("[error=%q]", err.Error()))
	}
	parts = append(parts, msg)

	if len(all) > 0 {
		var fieldParts []string
		for _, f := range all {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		parts = append(parts, fmt.Sprintf("fields=[%s]", strings.Join(fieldParts, " ")))
	}

	s.logger.Println(strings.Join(parts, " "))
}

func (s *Std) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	return levels[level] >= levels[s.minLevel]
}

func (s *Std) Debug(msg string, fields ...F) { s.log(LevelDebug, msg, nil, fields...) }
func (s *Std) Info(msg string, fields ...F)  { s.log(LevelInfo, msg, nil, fields...) }
func (s *Std) Warn(msg string, fields ...F)  { s.log(LevelWarn, msg, nil, fields...) }

func (s *Std) Error(msg string, err error, fields ...F) {
	s.log(LevelError, msg, err, fields...)
}

func (s *Std) WithFields(fields ...F) Logger {
	return &Std{
		fields:   append(append([]F{}, s.fields...), fields...),
		minLevel: s.minLevel,
		logger:   s.logger,
	}
}

// Printf adapts a Logger to the printf-style sink some subsystems expect.
type Printf struct {
	L Logger
}

func (p Printf) Printf(format string, v ...any) {
	if p.L != nil {
		p.L.Debug(fmt.Sprintf(format, v...))
	}
}

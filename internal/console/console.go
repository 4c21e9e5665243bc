// Package console acquires the terminal device rintty runs on. Taking over
// a TTY requires becoming a session leader, which a running Go process
// cannot do directly (it is already a process-group leader), so the parent
// re-executes the binary in a fresh session with the device wired to its
// standard streams, the moral equivalent of the classic fork+setsid dance.
package console

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/term"

	"github.com/pink10000/rintty/internal/logging"
)

// leaderEnv marks the re-executed session-leader process.
const leaderEnv = "RINTTY_SESSION_LEADER"

// Session is the acquired terminal, held for the life of the login screen.
// Exactly one is created per process; teardown must run on every exit path.
type Session struct {
	tty    *os.File
	logger logging.Logger
}

// IsLeader reports whether this process is the re-executed session leader.
func IsLeader() bool {
	return os.Getenv(leaderEnv) == "1"
}

// SpawnLeader opens the terminal device and re-executes the current binary
// as a new session leader with the device as its standard streams and
// controlling terminal. The caller (the original parent) should exit once
// this returns successfully.
func SpawnLeader(ttyPath string, args []string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NoOp{}
	}
	tty, err := os.OpenFile(ttyPath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("console: open %s: %w", ttyPath, err)
	}
	defer tty.Close()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("console: resolve executable: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.Env = append(os.Environ(), leaderEnv+"=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("console: respawn on %s: %w", ttyPath, err)
	}
	logger.Info("console: session leader spawned",
		logging.Field("tty", ttyPath), logging.Field("pid", cmd.Process.Pid))
	// The leader outlives us; don't hold a handle to it.
	return cmd.Process.Release()
}

// Attach binds the session to the terminal already on the standard
// streams: either the device SpawnLeader wired up, or, in test mode, the
// invoking terminal.
func Attach(logger logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.NoOp{}
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("console: standard input is not a terminal")
	}
	return &Session{tty: os.Stdin, logger: logger}, nil
}

// TTY returns the acquired terminal device.
func (s *Session) TTY() *os.File { return s.tty }

// Size returns the terminal dimensions.
func (s *Session) Size() (cols, rows int, err error) {
	return term.GetSize(int(s.tty.Fd()))
}

// Close releases the session. The TUI layer restores the terminal modes it
// changed; this only exists so acquisition and teardown pair up visibly on
// every exit path.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.logger.Debug("console: session released")
}

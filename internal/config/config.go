// Package config loads rintty's optional JSON configuration file. Command
// line flags override file values; file values override built-in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DefaultPath is consulted when no --config flag is given. A missing file
// there is not an error.
const DefaultPath = "/etc/rintty/config.json"

// schema rejects malformed configuration before decoding, so a typo'd key
// or a mistyped value surfaces as a precise startup error instead of a
// silently ignored setting.
const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "animation": { "type": "string" },
    "show_password": { "type": "boolean" },
    "pam_service": { "type": "string", "minLength": 1 },
    "tick_interval_ms": { "type": "integer", "minimum": 1, "maximum": 1000 }
  }
}`

// Config is the merged runtime configuration.
type Config struct {
	// Animation is the background command line, whitespace-separated.
	// Empty means no animation.
	Animation string `json:"animation"`
	// ShowPassword disables masking of the password field.
	ShowPassword bool `json:"show_password"`
	// PAMService names the PAM stack used for authentication.
	PAMService string `json:"pam_service"`
	// TickIntervalMS is the animation drain/redraw cadence.
	TickIntervalMS int `json:"tick_interval_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PAMService:     "login",
		TickIntervalMS: 33,
	}
}

// Load reads, validates and decodes the config file at path, merged over
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return cfg, fmt.Errorf("config: validate %s: %w", path, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return cfg, fmt.Errorf("config: %s: %s", path, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional behaves like Load, but treats an empty path as "use the
// default location if it exists, otherwise defaults only".
func LoadOptional(path string) (Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			return Default(), nil
		}
		path = DefaultPath
	}
	return Load(path)
}

// SplitCommand splits a configured command line into program and arguments.
// An empty or all-whitespace string means "no animation requested".
func SplitCommand(s string) (string, []string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

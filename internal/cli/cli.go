// Package cli wires flags, environment, configuration, logging, terminal
// acquisition and the login screen into the rintty binary.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pink10000/rintty/internal/auth"
	"github.com/pink10000/rintty/internal/config"
	"github.com/pink10000/rintty/internal/console"
	"github.com/pink10000/rintty/internal/logging"
	"github.com/pink10000/rintty/internal/tui"
)

// Run executes rintty with the provided CLI arguments. It returns a
// POSIX-style exit code. On a successful login in TTY mode it does not
// return at all: the process image becomes the user's shell.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	flagSet := flag.NewFlagSet("rintty", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "usage: rintty [flags] [tty-path]")
		fmt.Fprintln(stderr, "Without a tty path rintty runs in test mode on the current terminal.")
		flagSet.PrintDefaults()
	}

	animationCmd := flagSet.String("animation", os.Getenv("RINTTY_ANIMATION"),
		"command to run for the background animation")
	configPath := flagSet.String("config", "", "path to the JSON config file")
	logPath := flagSet.String("log", os.Getenv("RINTTY_LOG"),
		"write a debug log to this file")
	var showPassword bool
	flagSet.BoolVar(&showPassword, "show-password", false,
		"show the password in plain text instead of masking it")
	flagSet.BoolVar(&showPassword, "p", false, "shorthand for -show-password")
	verbose := flagSet.Bool("v", false, "log at debug level")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}
	ttyPath := flagSet.Arg(0)

	logger, closeLog, err := newLogger(*logPath, *verbose)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()
	logger.Info("rintty starting", logging.Field("tty", ttyPath))

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *animationCmd != "" {
		cfg.Animation = *animationCmd
	}
	if showPassword {
		cfg.ShowPassword = true
	}

	// Owning a terminal device means becoming its session leader, which
	// only a freshly re-executed process can do. The original invocation
	// just spawns the leader and leaves.
	if ttyPath != "" && !console.IsLeader() {
		if err := console.SpawnLeader(ttyPath, args, logger); err != nil {
			fmt.Fprintln(stderr, err)
			logger.Error("terminal takeover failed", err)
			return 1
		}
		return 0
	}

	session, err := console.Attach(logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer session.Close()

	testMode := ttyPath == ""
	result, err := tui.Run(ctx, tui.Options{
		Animation:    cfg.Animation,
		ShowPassword: cfg.ShowPassword,
		PAMService:   cfg.PAMService,
		TickInterval: time.Duration(cfg.TickIntervalMS) * time.Millisecond,
		TestMode:     testMode,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("login screen failed", err)
		fmt.Fprintf(stderr, "login screen failed: %v\n", err)
		return 1
	}

	if !result.Authenticated {
		// Only reachable in test mode; on a real TTY the form never exits
		// without credentials.
		logger.Info("exited without authentication")
		return 0
	}

	if testMode {
		fmt.Fprintf(stdout, "Authentication successful for %s.\n", result.Username)
		return 0
	}

	user, err := auth.LookupUser(result.Username)
	if err != nil {
		logger.Error("user lookup failed", err, logging.Field("user", result.Username))
		return 1
	}
	session.Close()
	if err := auth.LoginShell(user); err != nil {
		logger.Error("shell hand-off failed", err, logging.Field("user", user.Name))
		return 1
	}
	return 0 // unreachable: LoginShell replaces the process on success
}

func newLogger(path string, verbose bool) (logging.Logger, func(), error) {
	if path == "" {
		return logging.NoOp{}, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.NewStd(level, f), func() { _ = f.Close() }, nil
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestRunRejectsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	code := Run(context.Background(), []string{"--no-such-flag"}, nil, &stderr)

	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "usage: rintty")
}

func TestRunReportsBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tick_interval_ms": -1}`), 0o644))

	var stderr bytes.Buffer
	code := Run(context.Background(), []string{"--config", path}, nil, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), path)
}

func TestRunReportsUnwritableLog(t *testing.T) {
	var stderr bytes.Buffer
	code := Run(context.Background(),
		[]string{"--log", filepath.Join(t.TempDir(), "missing", "rintty.log")}, nil, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "failed to open log")
}

func TestRunWithoutTerminalFails(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("test process has a terminal on stdin")
	}

	var stderr bytes.Buffer
	code := Run(context.Background(), nil, nil, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "not a terminal")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pink10000/rintty/internal/cli"
)

// main bootstraps the rintty console login manager.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// Package main is the entry point for the mtask CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mtask/internal/cli"
	"mtask/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A nil factory selects the Remember The Milk backend
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

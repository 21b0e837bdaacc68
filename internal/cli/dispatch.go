package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"mtask/internal/backend/rtmtasks"
	"mtask/internal/commands"
	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/logging"
	"mtask/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// RTMFactory builds the Remember The Milk backend from the stored
// credentials and token.
func RTMFactory(ctx context.Context, cfg *config.Config) (service.Service, error) {
	return rtmtasks.New(ctx, cfg)
}

// RTMKeyFactory builds the Remember The Milk backend from the stored
// credentials only.
func RTMKeyFactory(ctx context.Context, cfg *config.Config) (service.Service, error) {
	return rtmtasks.NewWithKey(ctx, cfg)
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
// A nil factory selects RTMFactory, preceded by checks for the credential and
// token files so a missing setup step gets a specific message.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Look up command
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Parse flags
	remaining := args[1:]
	return d.dispatchCommand(ctx, cmd, remaining, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagErrorMessage(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	// Create config
	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	cfg.Logger = logging.New(nil, false)
	if debug {
		cfg.Logger = logging.New(errOut, true)
	}
	logger := logging.WithCommand(cfg.Logger, cmd.Name())
	logger.Debug("dispatching", "args", len(positionalArgs), "config", cfg.Dir)

	access := commands.AccessNone
	if cmd.NeedsAuth() {
		access = commands.AccessToken
	}
	if ac, ok := cmd.(commands.AccessChecker); ok {
		access = ac.Access(positionalArgs)
	}

	var svc service.Service
	if access != commands.AccessNone {
		factory := d.factory
		if factory == nil {
			// Default backend: report a missing setup step before trying
			// to talk to the service.
			if !cfg.HasCredentials() {
				fmt.Fprintf(errOut, "error: API credentials not found in %s (run: mtask login)\n", cfg.CredentialsPath())
				return exitcode.AuthError
			}
			factory = RTMKeyFactory
			if access == commands.AccessToken {
				if !cfg.HasToken() {
					fmt.Fprintf(errOut, "error: %s\n", rtmtasks.ErrNotLoggedIn)
					return exitcode.AuthError
				}
				factory = RTMFactory
			}
		}

		svc, err = factory(ctx, cfg)
		if err != nil {
			if isAuthError(err) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	code := cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
	logger.Debug("done", "exit", code, "result", exitcode.Name(code))
	return code
}

// isAuthError reports whether a backend construction error is fixed by
// logging in again or by correcting the credentials file.
func isAuthError(err error) bool {
	for _, target := range []error{
		config.ErrNoCredentials,
		config.ErrInvalidCredentials,
		rtmtasks.ErrNotLoggedIn,
		rtmtasks.ErrUnauthorized,
		rtmtasks.ErrInsufficientPerms,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// flagErrorMessage rewrites flag package errors into the CLI's wording.
func flagErrorMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "flag needs an argument: "):
		return msg
	case strings.HasPrefix(msg, "flag provided but not defined: "):
		return "unknown flag: " + strings.TrimPrefix(msg, "flag provided but not defined: ")
	}
	return msg
}

// Package commands implements the mtask subcommands. Each command registers
// itself with DefaultRegistry from an init function.
package commands

import (
	"context"
	"flag"
	"io"

	"mtask/internal/config"
	"mtask/internal/service"
)

// Command is one mtask subcommand.
type Command interface {
	Name() string
	Aliases() []string

	// Synopsis is the one-line description shown by "help <command>".
	Synopsis() string
	Usage() string

	// NeedsAuth reports whether Run needs a logged-in service. The
	// dispatcher only builds one for commands that return true, unless the
	// command also implements AccessChecker.
	NeedsAuth() bool

	// RegisterFlags adds the command's own flags next to the common ones.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional arguments left after
	// flag parsing and returns the process exit code. Results go to out,
	// errors and prompts to errOut.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// Access is the setup a command run needs from the dispatcher.
type Access int

const (
	// AccessNone runs without a service.
	AccessNone Access = iota
	// AccessKey needs API credentials but no login.
	AccessKey
	// AccessToken needs API credentials and a stored token.
	AccessToken
)

// AccessChecker is implemented by commands whose access depends on their
// arguments. The dispatcher asks it after flag parsing and prefers the
// answer over NeedsAuth.
type AccessChecker interface {
	Access(args []string) Access
}

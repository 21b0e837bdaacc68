package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd forgets the stored token. Tokens do not expire, so access stays
// granted on the service until the user revokes it there.
type LogoutCmd struct {
	all bool
}

// SetAll also removes the API credentials (for testing).
func (c *LogoutCmd) SetAll(all bool) {
	c.all = all
}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored token" }
func (c *LogoutCmd) Usage() string     { return "mtask logout [common flags] [--all]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	logger := loggerFor(cfg, c.Name())

	if c.all {
		if err := cfg.RemoveCredentials(); err != nil {
			fmt.Fprintf(errOut, "error: failed to remove credentials: %v\n", err)
			return exitcode.AuthError
		}
		logger.Debug("removed credentials", "path", cfg.CredentialsPath())
	}

	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	logger.Debug("removed token", "path", cfg.TokenPath())

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

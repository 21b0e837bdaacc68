package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/output"
	"mtask/internal/service"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the account the stored token belongs to.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "mtask whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	output.FormatUser(out, user)
	return exitcode.Success
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/service"
)

func init() {
	Register(&CreateListCmd{})
}

// CreateListCmd creates a list, or a smart list when --filter is given.
type CreateListCmd struct {
	filter string
}

// SetFilter sets the smart list search (for testing).
func (c *CreateListCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "mtask createlist [common flags] [--filter <search>] <list-name>"
}
func (c *CreateListCmd) NeedsAuth() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	// Names are matched case-insensitively, so "work" collides with "Work".
	_, err := svc.ResolveList(ctx, name)
	switch {
	case err == nil, strings.Contains(err.Error(), "ambiguous"):
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	case !strings.Contains(err.Error(), "not found"):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if err := svc.CreateList(ctx, name, strings.TrimSpace(c.filter)); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

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
	Register(&RmListCmd{})
}

// RmListCmd deletes a list. Lists with open tasks need --force.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a list" }
func (c *RmListCmd) Usage() string     { return "mtask rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsAuth() bool   { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	list, err := svc.ResolveList(ctx, name)
	if err != nil {
		return reportResolveError(errOut, name, err)
	}

	switch {
	case list.IsDefault:
		fmt.Fprintln(errOut, "error: cannot delete default list")
		return exitcode.UserError
	case list.Locked:
		fmt.Fprintf(errOut, "error: cannot delete locked list: %s\n", list.Title)
		return exitcode.UserError
	}

	// A smart list only shows tasks stored elsewhere; deleting it loses none.
	if !c.force && !list.Smart {
		hasOpenTasks, err := svc.HasOpenTasks(ctx, list.ID)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		if hasOpenTasks {
			fmt.Fprintln(errOut, "error: list not empty (use --force)")
			return exitcode.UserError
		}
	}

	if err := svc.DeleteList(ctx, list.ID); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

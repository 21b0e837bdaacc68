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
	Register(&ListsCmd{})
}

// ListsCmd prints every live list. Archived and deleted lists are hidden by
// the backend.
type ListsCmd struct {
	ids     bool
	jsonOut bool
}

// SetIDs enables the ID column (for testing).
func (c *ListsCmd) SetIDs(ids bool) {
	c.ids = ids
}

// SetJSON enables JSON output (for testing).
func (c *ListsCmd) SetJSON(jsonOut bool) {
	c.jsonOut = jsonOut
}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Show all lists" }
func (c *ListsCmd) Usage() string     { return "mtask lists [common flags] [--ids | --json]" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.ids, "ids", false, "")
	fs.BoolVar(&c.jsonOut, "json", false, "")
}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.ids && c.jsonOut {
		fmt.Fprintln(errOut, "error: cannot use both --ids and --json")
		return exitcode.UserError
	}

	lists, err := svc.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if c.jsonOut {
		if lists == nil {
			lists = []service.TaskList{}
		}
		if err := output.FormatJSON(out, lists); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}

	for _, list := range lists {
		if c.ids {
			output.FormatListWithID(out, list)
			continue
		}
		output.FormatListName(out, list)
	}
	return exitcode.Success
}

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
	Register(&AddCmd{})
}

// AddCmd creates a task in the default list or the one named by --list.
type AddCmd struct {
	listName string
	smart    bool
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

// SetSmart enables Smart Add parsing (for testing).
func (c *AddCmd) SetSmart(smart bool) {
	c.smart = smart
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "mtask add [--list <list-name>] [--smart] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.smart, "smart", false, "")
	fs.BoolVar(&c.smart, "s", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	list, code := baseList(ctx, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}
	if list.Smart {
		fmt.Fprintf(errOut, "error: cannot add tasks to smart list: %s\n", list.Title)
		return exitcode.UserError
	}

	if err := svc.CreateTask(ctx, list.ID, title, c.smart); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

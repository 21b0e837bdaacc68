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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *DoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string     { return "mtask done [--list <list-name>] <ref...>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runTaskAction(ctx, cfg, svc, c.listName, args, svc.CompleteTask, out, errOut)
}

// runTaskAction resolves every reference in args, then applies action to
// each task in order. It stops at the first backend failure.
func runTaskAction(ctx context.Context, cfg *config.Config, svc service.Service, listName string, args []string,
	action func(ctx context.Context, listID, taskID string) error, out, errOut io.Writer) int {
	targets, code := resolveTargets(ctx, svc, listName, args, errOut)
	if code != exitcode.Success {
		return code
	}

	for _, t := range targets {
		if err := action(ctx, t.listID, t.task.ID); err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"mtask/internal/backend/rtmtasks"
	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/output"
	"mtask/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `mtask` (no args) and `mtask list <list-name>`.
type ListCmd struct {
	page int
	ids  bool
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

// SetIDs appends task IDs to each line (for testing).
func (c *ListCmd) SetIDs(ids bool) {
	c.ids = ids
}

func (c *ListCmd) lineOptions() []output.Option {
	if c.ids {
		return []output.Option{output.ShowID()}
	}
	return nil
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return nil }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "mtask list [--page <n>] [--ids] <list-name>" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.BoolVar(&c.ids, "ids", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Validate page number
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}

	// If no args, list all tasks (default + named lists)
	if len(args) == 0 {
		return c.listAll(ctx, cfg, svc, out, errOut)
	}

	// Otherwise, list specific list
	listName := strings.Join(args, " ")
	return c.listOne(ctx, cfg, svc, listName, out, errOut)
}

// listAll lists tasks from all lists (mtask with no args).
func (c *ListCmd) listAll(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	hasAnyTasks := false

	// Get default list tasks (page 1 only for mtask with no args)
	defaultList, err := svc.DefaultList(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	defaultTasks, err := svc.ListOpenTasks(ctx, defaultList.ID, 1)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	// Print default list tasks (no header)
	for i, task := range defaultTasks {
		output.FormatTask(out, i+1, task, c.lineOptions()...)
		hasAnyTasks = true
	}

	// Get all lists
	lists, err := svc.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	// Print named lists with tasks, assigning letters a-z
	letter := 'a'
	for _, list := range lists {
		if list.IsDefault || list.Smart {
			continue // Default already printed; smart lists repeat other lists' tasks
		}

		tasks, err := svc.ListOpenTasks(ctx, list.ID, 1)
		if err != nil {
			// Partial failure: print what we have so far, then error
			fmt.Fprintf(errOut, "error: failed to fetch list: %s: %v\n", list.Title, err)
			return exitcode.BackendError
		}

		if len(tasks) == 0 {
			continue // Skip empty lists
		}

		// Check for max 26 lists limit
		if letter > 'z' {
			fmt.Fprintln(errOut, "error: too many lists (max 26)")
			return exitcode.UserError
		}

		// Print list section with current letter
		output.FormatListHeader(out, list.Title, false)
		for i, task := range tasks {
			output.FormatTaskWithLetter(out, letter, i+1, task, c.lineOptions()...)
		}
		letter++
		hasAnyTasks = true
	}

	// If no tasks found anywhere
	if !hasAnyTasks && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}

	return exitcode.Success
}

// listOne lists tasks from a specific list (mtask list <name>).
func (c *ListCmd) listOne(ctx context.Context, cfg *config.Config, svc service.Service, listName string, out, errOut io.Writer) int {
	// Validate list name
	listName = strings.TrimSpace(listName)
	if listName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	// Resolve list
	list, err := svc.ResolveList(ctx, listName)
	if err != nil {
		return reportResolveError(errOut, listName, err)
	}

	// Get tasks for the page
	tasks, err := svc.ListOpenTasks(ctx, list.ID, c.page)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	// Print list section (even if empty)
	output.FormatListHeader(out, list.Title, list.IsDefault)

	// Numbers continue across pages so they match done/rm references
	startNum := (c.page-1)*rtmtasks.PageSize + 1

	for i, task := range tasks {
		output.FormatTaskIndented(out, startNum+i, task, c.lineOptions()...)
	}

	return exitcode.Success
}

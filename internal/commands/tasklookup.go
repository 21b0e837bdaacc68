package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mtask/internal/backend/rtmtasks"
	"mtask/internal/exitcode"
	"mtask/internal/service"
)

type taskPageCache map[string]map[int][]service.Task // listID -> page -> tasks

// findTaskByNumberCached finds a task by its 1-based number in a list, caching
// pages to avoid redundant backend calls.
func findTaskByNumberCached(ctx context.Context, svc service.Service, listID string, num int, cache taskPageCache) (service.Task, error) {
	page := (num-1)/rtmtasks.PageSize + 1
	indexInPage := (num - 1) % rtmtasks.PageSize

	if cache[listID] == nil {
		cache[listID] = make(map[int][]service.Task)
	}

	tasks, ok := cache[listID][page]
	if !ok {
		var err error
		tasks, err = svc.ListOpenTasks(ctx, listID, page)
		if err != nil {
			return service.Task{}, err
		}
		cache[listID][page] = tasks
	}

	if indexInPage >= len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}

	return tasks[indexInPage], nil
}

// target is a task to act on and the list it was found in.
type target struct {
	listID string
	task   service.Task
}

// resolveTargets turns task references into tasks. Every reference is
// resolved before the caller changes anything, so numbers keep referring to
// the listing the user saw. Duplicates are dropped. On failure the error has
// been written to errOut and the exit code is returned.
func resolveTargets(ctx context.Context, svc service.Service, listName string, args []string, errOut io.Writer) ([]target, int) {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return nil, exitcode.UserError
	}

	for _, ref := range refs {
		// --list flag and list letter cannot both be used
		if listName != "" && ref.HasLetter {
			fmt.Fprintln(errOut, "error: cannot use both --list and list letter")
			return nil, exitcode.UserError
		}
		if ref.ID == "" && ref.TaskNum < 1 {
			fmt.Fprintf(errOut, "error: task number out of range: %d\n", ref.TaskNum)
			return nil, exitcode.UserError
		}
	}

	var (
		cache    = make(taskPageCache)
		byLetter = make(map[rune]service.TaskList)
		base     *service.TaskList
		seen     = make(map[string]bool)
		out      []target
	)
	for _, ref := range refs {
		var t target
		switch {
		case ref.ID != "":
			t = target{listID: strings.SplitN(ref.ID, "/", 2)[0], task: service.Task{ID: ref.ID}}

		case ref.HasLetter:
			list, ok := byLetter[ref.Letter]
			if !ok {
				list, err = ResolveListByLetter(ctx, svc, ref.Letter)
				if err != nil {
					if strings.Contains(err.Error(), "list letter not found") {
						fmt.Fprintf(errOut, "error: list letter not found: %c\n", ref.Letter)
						return nil, exitcode.UserError
					}
					fmt.Fprintf(errOut, "error: backend error: %v\n", err)
					return nil, exitcode.BackendError
				}
				byLetter[ref.Letter] = list
			}
			if t, err = lookupTarget(ctx, svc, list.ID, ref.TaskNum, cache); err != nil {
				return nil, reportLookupError(errOut, ref.TaskNum, err)
			}

		default:
			if base == nil {
				list, code := baseList(ctx, svc, listName, errOut)
				if code != exitcode.Success {
					return nil, code
				}
				base = &list
			}
			if t, err = lookupTarget(ctx, svc, base.ID, ref.TaskNum, cache); err != nil {
				return nil, reportLookupError(errOut, ref.TaskNum, err)
			}
		}

		if seen[t.task.ID] {
			continue
		}
		seen[t.task.ID] = true
		out = append(out, t)
	}
	return out, exitcode.Success
}

func lookupTarget(ctx context.Context, svc service.Service, listID string, num int, cache taskPageCache) (target, error) {
	task, err := findTaskByNumberCached(ctx, svc, listID, num, cache)
	if err != nil {
		return target{}, err
	}
	return target{listID: listID, task: task}, nil
}

func reportLookupError(errOut io.Writer, num int, err error) int {
	if strings.Contains(err.Error(), "out of range") {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// baseList resolves the --list flag, or the default list when it is empty.
func baseList(ctx context.Context, svc service.Service, listName string, errOut io.Writer) (service.TaskList, int) {
	if listName == "" {
		list, err := svc.DefaultList(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return service.TaskList{}, exitcode.BackendError
		}
		return list, exitcode.Success
	}

	list, err := svc.ResolveList(ctx, listName)
	if err != nil {
		return service.TaskList{}, reportResolveError(errOut, listName, err)
	}
	return list, exitcode.Success
}

// reportResolveError prints a ResolveList failure and returns its exit code.
func reportResolveError(errOut io.Writer, listName string, err error) int {
	if strings.Contains(err.Error(), "not found") {
		fmt.Fprintf(errOut, "error: list not found: %s\n", listName)
		return exitcode.UserError
	}
	if strings.Contains(err.Error(), "ambiguous") {
		fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", listName)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

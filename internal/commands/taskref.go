package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"mtask/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter    rune   // 0 if no letter, 'a'-'z' otherwise
	TaskNum   int    // 1-based task number
	HasLetter bool   // true if a list letter was provided
	ID        string // backend task ID when given directly as "list/series/task"
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the first task reference in args.
//
// Accepted forms:
//  1. all digits (5): task number in the default list
//  2. <letter><digits> (a1, b12): task number in a lettered list
//  3. <digits>/<digits>/<digits> (12/345/678): task ID as printed by "mtask call"
//
// Anything else, including a bare letter, is an invalid reference.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	return parseOneRef(args[0])
}

// ParseTaskRefs parses every argument as a task reference.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}
	refs := make([]TaskRef, 0, len(args))
	for _, arg := range args {
		ref, err := parseOneRef(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseOneRef(s string) (TaskRef, error) {
	invalid := fmt.Errorf("invalid task reference: %s", s)

	if isAllDigits(s) {
		num, err := strconv.Atoi(s)
		if err != nil {
			return TaskRef{}, invalid
		}
		return TaskRef{TaskNum: num}, nil
	}

	if isTaskID(s) {
		return TaskRef{ID: s}, nil
	}

	if len(s) > 1 && isLetter(rune(s[0])) && isAllDigits(s[1:]) {
		num, err := strconv.Atoi(s[1:])
		if err != nil {
			return TaskRef{}, invalid
		}
		return TaskRef{Letter: rune(s[0]), TaskNum: num, HasLetter: true}, nil
	}

	return TaskRef{}, invalid
}

// isTaskID reports whether s looks like "list/series/task".
func isTaskID(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if !isAllDigits(p) {
			return false
		}
	}
	return true
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// letteredLists returns the lists that get a letter in the full listing:
// non-default, non-smart lists with open tasks, in API order, at most 26.
func letteredLists(ctx context.Context, svc service.Service) ([]service.TaskList, error) {
	lists, err := svc.ListLists(ctx)
	if err != nil {
		return nil, err
	}

	var out []service.TaskList
	for _, list := range lists {
		if list.IsDefault || list.Smart {
			continue
		}

		hasOpen, err := svc.HasOpenTasks(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		if !hasOpen {
			continue // Skip empty lists
		}

		out = append(out, list)
		if len(out) == 'z'-'a'+1 {
			break
		}
	}
	return out, nil
}

// ResolveListByLetter resolves a list letter to a TaskList.
// Returns error if letter is not found.
func ResolveListByLetter(ctx context.Context, svc service.Service, letter rune) (service.TaskList, error) {
	lists, err := letteredLists(ctx, svc)
	if err != nil {
		return service.TaskList{}, err
	}
	idx := int(letter - 'a')
	if idx < 0 || idx >= len(lists) {
		return service.TaskList{}, fmt.Errorf("list letter not found: %c", letter)
	}
	return lists[idx], nil
}

// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"mtask/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// Location is the zone due dates are rendered in.
var Location = time.Local

// Option changes how a task line is rendered.
type Option func(*lineOptions)

type lineOptions struct {
	showID bool
}

// ShowID appends the task ID to the line, e.g. "Buy milk  (101/9/90)".
func ShowID() Option {
	return func(o *lineOptions) { o.showID = true }
}

// FormatTask formats a task line for the default list.
// Format: "{N:>4}  {TITLE}{DETAILS}\n" (4-wide right-aligned number, two spaces, title)
func FormatTask(w io.Writer, num int, task service.Task, opts ...Option) {
	fmt.Fprintf(w, "%4d  %s\n", num, describe(task, opts))
}

// FormatTaskIndented formats a task line for a named list section.
// Format: "    {N:>4}  {TITLE}{DETAILS}\n" (4 spaces indent + 4-wide number + 2 spaces + title)
func FormatTaskIndented(w io.Writer, num int, task service.Task, opts ...Option) {
	fmt.Fprintf(w, "    %4d  %s\n", num, describe(task, opts))
}

// FormatTaskWithLetter formats a task line in a lettered list section.
// Format: "   {L}{N:>4}  {TITLE}{DETAILS}\n", so "a1" refers to the first line.
func FormatTaskWithLetter(w io.Writer, letter rune, num int, task service.Task, opts ...Option) {
	fmt.Fprintf(w, "   %c%4d  %s\n", letter, num, describe(task, opts))
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string, isDefault bool) {
	displayTitle := normalizeListTitle(title)
	if isDefault {
		displayTitle += " [default]"
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, displayTitle)
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list name for the lists command.
func FormatListName(w io.Writer, list service.TaskList) {
	fmt.Fprintln(w, listLabel(list))
}

// FormatListWithID formats a list name preceded by its ID. Smart lists show
// their search after the name.
// Format: "{ID:<8} {TITLE}{MARKERS}\n"
func FormatListWithID(w io.Writer, list service.TaskList) {
	label := listLabel(list)
	if list.Smart && list.Filter != "" {
		label += " " + list.Filter
	}
	fmt.Fprintf(w, "%-8s %s\n", list.ID, label)
}

func listLabel(list service.TaskList) string {
	title := normalizeListTitle(list.Title)
	if list.IsDefault {
		title += " [default]"
	}
	if list.Smart {
		title += " [smart]"
	}
	return title
}

// FormatUser formats the logged-in account.
func FormatUser(w io.Writer, user service.User) {
	name := user.Username
	if user.Fullname != "" {
		name += " (" + user.Fullname + ")"
	}
	fmt.Fprintln(w, strings.TrimSpace(name))
}

// FormatJSON writes v as indented JSON.
func FormatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// describe renders the title followed by the task details.
// Example: "Write report !1 #work [due 2024-03-15 09:00]"
func describe(task service.Task, opts []Option) string {
	var o lineOptions
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	b.WriteString(normalizeTitle(task.Title))
	switch task.Priority {
	case "1", "2", "3":
		b.WriteString(" !" + task.Priority)
	}
	for _, tag := range task.Tags {
		b.WriteString(" #" + tag)
	}
	if task.Due != nil {
		layout := "2006-01-02"
		if task.HasDueTime {
			layout += " 15:04"
		}
		b.WriteString(" [due " + task.Due.In(Location).Format(layout) + "]")
	}
	if o.showID && task.ID != "" {
		b.WriteString("  (" + task.ID + ")")
	}
	return b.String()
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

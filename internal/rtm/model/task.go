package model

import (
	"fmt"
	"strconv"
)

// ParseTasks parses the result of rtm.tasks.getList.
func ParseTasks(rsp map[string]any) (Tasks, error) {
	o, err := object(rsp).envelope("tasks", "tasks")
	if err != nil {
		return Tasks{}, err
	}
	lists, err := parseList("list", o["list"], parseTaskList)
	if err != nil {
		return Tasks{}, err
	}
	return Tasks{Lists: lists, Extra: o.extra("list")}, nil
}

// ParseTaskList parses a task list. Write operations such as rtm.tasks.add
// wrap it as {"list": {...}}; elements of rtm.tasks.getList are bare.
func ParseTaskList(rsp map[string]any) (TaskList, error) {
	return parseTaskList(object(rsp).unwrap("list"))
}

func parseTaskList(o object) (TaskList, error) {
	id, err := o.integer("list", "id")
	if err != nil {
		return TaskList{}, err
	}
	series, err := parseList("taskseries", o["taskseries"], parseTaskSeries)
	if err != nil {
		return TaskList{}, err
	}
	return TaskList{ID: id, Series: series, Extra: o.extra("id", "taskseries")}, nil
}

func parseTaskSeries(o object) (TaskSeries, error) {
	const entity = "taskseries"
	var (
		ts  = TaskSeries{Name: o.text("name"), Source: o.optString("source"), URL: o.optString("url")}
		err error
	)
	if ts.ID, err = o.integer(entity, "id"); err != nil {
		return TaskSeries{}, err
	}
	if ts.Created, err = o.timestamp(entity, "created"); err != nil {
		return TaskSeries{}, err
	}
	if ts.Modified, err = o.timestamp(entity, "modified"); err != nil {
		return TaskSeries{}, err
	}
	if ts.LocationID, err = o.optInt(entity, "location_id"); err != nil {
		return TaskSeries{}, err
	}
	if ts.Tasks, err = parseList("task", o["task"], parseTask); err != nil {
		return TaskSeries{}, err
	}
	for i := range ts.Tasks {
		ts.Tasks[i].Name = ts.Name
	}
	if ts.RRule, err = parseRecurrence(o["rrule"]); err != nil {
		return TaskSeries{}, err
	}
	if ts.Tags, err = parseStrings("tag", o.member("tags", "tag")); err != nil {
		return TaskSeries{}, err
	}
	if ts.Notes, err = parseList("note", o.member("notes", "note"), parseNote); err != nil {
		return TaskSeries{}, err
	}
	if ts.Participants, err = parseList("contact", o.member("participants", "contact"), parseContact); err != nil {
		return TaskSeries{}, err
	}
	ts.Extra = o.extra("id", "name", "source", "url", "created", "modified", "location_id",
		"task", "rrule", "tags", "notes", "participants")
	return ts, nil
}

func parseTask(o object) (Task, error) {
	const entity = "task"
	var (
		t   = Task{HasDueTime: o.flag("has_due_time")}
		err error
	)
	if t.ID, err = o.integer(entity, "id"); err != nil {
		return Task{}, err
	}
	if t.Priority, err = parsePriority(o.text("priority")); err != nil {
		return Task{}, err
	}
	if t.Due, err = o.timestamp(entity, "due"); err != nil {
		return Task{}, err
	}
	if t.Added, err = o.timestamp(entity, "added"); err != nil {
		return Task{}, err
	}
	if t.Completed, err = o.timestamp(entity, "completed"); err != nil {
		return Task{}, err
	}
	if t.Deleted, err = o.timestamp(entity, "deleted"); err != nil {
		return Task{}, err
	}
	postponed, err := o.optInt(entity, "postponed")
	if err != nil {
		return Task{}, err
	}
	if postponed != nil {
		t.Postponed = *postponed
	}
	if t.Estimate, err = ParseEstimate(o.text("estimate")); err != nil {
		return Task{}, err
	}
	t.Extra = o.extra("id", "priority", "has_due_time", "due", "added", "completed", "deleted",
		"postponed", "estimate")
	return t, nil
}

// parsePriority maps "1".."3" to a value and "N" or "" to nil.
func parsePriority(s string) (*int, error) {
	if s == "" || s == "N" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, malformed("task", "priority", err)
	}
	if n < PriorityHigh || n > PriorityLow {
		return nil, malformed("task", "priority", fmt.Errorf("%d not in %d..%d", n, PriorityHigh, PriorityLow))
	}
	return &n, nil
}

// ParseNote parses a note. rtm.tasks.notes.add and edit wrap it as
// {"note": {...}}.
func ParseNote(rsp map[string]any) (Note, error) {
	return parseNote(object(rsp).unwrap("note"))
}

func parseNote(o object) (Note, error) {
	const entity = "note"
	var (
		n   = Note{Title: o.optString("title"), Text: o.text(textKey)}
		err error
	)
	if n.ID, err = o.integer(entity, "id"); err != nil {
		return Note{}, err
	}
	if n.Created, err = o.timestamp(entity, "created"); err != nil {
		return Note{}, err
	}
	if n.Modified, err = o.timestamp(entity, "modified"); err != nil {
		return Note{}, err
	}
	n.Extra = o.extra("id", "title", textKey, "created", "modified")
	return n, nil
}

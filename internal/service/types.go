// Package service defines the backend-agnostic interface for task operations.
package service

import "time"

// Task represents a single open task.
type Task struct {
	// ID identifies the task to the backend. For Remember The Milk it is
	// "listID/seriesID/taskID".
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority"` // "1", "2", "3" or "N"
	Due        *time.Time `json:"due,omitempty"`
	HasDueTime bool       `json:"has_due_time,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// TaskList represents a task list.
type TaskList struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	IsDefault bool   `json:"default"`

	// Smart lists are saved searches. They hold no tasks of their own and
	// Filter is the search they run.
	Smart  bool   `json:"smart"`
	Filter string `json:"filter,omitempty"`

	// Locked lists (Inbox, Sent) cannot be renamed or deleted.
	Locked bool `json:"locked"`
}

// User is the account the service is authenticated as.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

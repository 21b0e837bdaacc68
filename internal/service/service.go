package service

import "context"

// Service defines the interface for task backend operations.
// Commands never talk to the Remember The Milk client directly.
type Service interface {
	// DefaultList returns the user's default task list.
	DefaultList(ctx context.Context) (TaskList, error)

	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// CreateList creates a new task list. A non-empty filter creates a
	// smart list running that search.
	CreateList(ctx context.Context, name, filter string) error

	// DeleteList deletes a task list by ID.
	DeleteList(ctx context.Context, listID string) error

	// ListOpenTasks returns open tasks for a list.
	// page is 1-based; page size is 100.
	// Returns empty slice if page is out of range.
	// Results are in API order (no client-side sorting).
	ListOpenTasks(ctx context.Context, listID string, page int) ([]Task, error)

	// HasOpenTasks checks if a list has any open tasks.
	HasOpenTasks(ctx context.Context, listID string) (bool, error)

	// CreateTask creates a new task in the specified list. With smartAdd
	// the backend parses Smart Add syntax such as "^tomorrow" out of the title.
	CreateTask(ctx context.Context, listID, title string, smartAdd bool) error

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, listID, taskID string) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error

	// CurrentUser returns the authenticated account.
	CurrentUser(ctx context.Context) (User, error)

	// Invoke calls a raw API method by name and returns its decoded result.
	Invoke(ctx context.Context, method string, args map[string]string) (any, error)
}

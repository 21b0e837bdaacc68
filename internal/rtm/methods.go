package rtm

import (
	"context"
	"fmt"

	"mtask/internal/rtm/model"
)

// invoke is Call with the result asserted to T.
func invoke[T any](ctx context.Context, c *Client, method string, args Args) (T, error) {
	var zero T
	v, err := c.Call(ctx, method, args)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("rtm: %s returned %T, want %T", method, v, zero)
	}
	return out, nil
}

// TaskRef identifies one task occurrence.
type TaskRef struct {
	ListID   int
	SeriesID int
	TaskID   int
}

func (r TaskRef) args(timeline string) Args {
	return Args{
		"timeline":      timeline,
		"list_id":       r.ListID,
		"taskseries_id": r.SeriesID,
		"task_id":       r.TaskID,
	}
}

// CreateTimeline starts a timeline for write calls.
func (c *Client) CreateTimeline(ctx context.Context) (string, error) {
	return invoke[string](ctx, c, "rtm.timelines.create", nil)
}

// TestLogin returns the user the current token belongs to.
func (c *Client) TestLogin(ctx context.Context) (model.User, error) {
	return invoke[model.User](ctx, c, "rtm.test.login", nil)
}

// GetSettings returns the user's account settings.
func (c *Client) GetSettings(ctx context.Context) (model.Settings, error) {
	return invoke[model.Settings](ctx, c, "rtm.settings.getList", nil)
}

// GetLists returns every list, including deleted and archived ones.
func (c *Client) GetLists(ctx context.Context) ([]model.List, error) {
	return invoke[[]model.List](ctx, c, "rtm.lists.getList", nil)
}

// AddList creates a list. A non-empty filter makes it a smart list.
func (c *Client) AddList(ctx context.Context, timeline, name, filter string) (model.List, error) {
	args := Args{"timeline": timeline, "name": name}
	if filter != "" {
		args["filter"] = filter
	}
	return invoke[model.List](ctx, c, "rtm.lists.add", args)
}

// DeleteList deletes a list.
func (c *Client) DeleteList(ctx context.Context, timeline string, listID int) (model.List, error) {
	return invoke[model.List](ctx, c, "rtm.lists.delete", Args{"timeline": timeline, "list_id": listID})
}

// GetTasks returns tasks matching filter in the given list. A zero listID
// searches every list and an empty filter matches everything.
func (c *Client) GetTasks(ctx context.Context, listID int, filter string) (model.Tasks, error) {
	args := Args{}
	if listID != 0 {
		args["list_id"] = listID
	}
	if filter != "" {
		args["filter"] = filter
	}
	return invoke[model.Tasks](ctx, c, "rtm.tasks.getList", args)
}

// AddTask creates a task. With parse set the service applies Smart Add
// syntax to name. A zero listID adds to the user's default list.
func (c *Client) AddTask(ctx context.Context, timeline string, listID int, name string, parse bool) (model.TaskList, error) {
	args := Args{"timeline": timeline, "name": name}
	if listID != 0 {
		args["list_id"] = listID
	}
	if parse {
		args["parse"] = true
	}
	return invoke[model.TaskList](ctx, c, "rtm.tasks.add", args)
}

// CompleteTask marks a task complete.
func (c *Client) CompleteTask(ctx context.Context, timeline string, ref TaskRef) (model.TaskList, error) {
	return invoke[model.TaskList](ctx, c, "rtm.tasks.complete", ref.args(timeline))
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, timeline string, ref TaskRef) (model.TaskList, error) {
	return invoke[model.TaskList](ctx, c, "rtm.tasks.delete", ref.args(timeline))
}

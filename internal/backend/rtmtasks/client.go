// Package rtmtasks implements the service.Service interface using the
// Remember The Milk API.
package rtmtasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"mtask/internal/config"
	"mtask/internal/rtm"
	"mtask/internal/rtm/model"
	"mtask/internal/service"
)

const (
	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout bounds every service operation.
	APITimeout = 30 * time.Second

	// InboxName is the list used when the account has no default list set.
	InboxName = "Inbox"

	// DefaultPerms is requested when the credentials file names none. The
	// CLI deletes lists and tasks, so it needs the highest level.
	DefaultPerms = rtm.PermsDelete

	openFilter = "status:incomplete"
)

// Errors the CLI maps to the auth exit code.
var (
	ErrNotLoggedIn       = errors.New("not logged in (run: mtask login)")
	ErrUnauthorized      = errors.New("token expired or revoked (run: mtask login)")
	ErrInsufficientPerms = errors.New("insufficient permissions")
)

// Remote error codes the backend translates.
const (
	codeInsufficientPerms = 99
	codeListInvalid       = 320
	codeTaskInvalid       = 340
)

// Client implements service.Service using Remember The Milk.
type Client struct {
	api *rtm.Client

	mu       sync.Mutex
	timeline string
}

// NewAPIClient builds an API client from the credentials in cfg. The
// returned client has no token; callers add one with rtm.WithTokenSource or
// run the frob handshake.
func NewAPIClient(cfg *config.Config, opts ...rtm.Option) (*rtm.Client, error) {
	creds, err := cfg.LoadCredentials()
	if err != nil {
		return nil, err
	}

	perms := DefaultPerms
	if creds.Perms != "" {
		perms, err = rtm.ParsePerms(creds.Perms)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidCredentials, err)
		}
	}

	base := []rtm.Option{
		rtm.WithPerms(perms),
		rtm.WithLogger(cfg.Logger),
		rtm.WithTransport(rtm.NewHTTPTransport(rtm.TransportConfig{UserAgent: creds.UserAgent})),
	}
	if creds.Endpoint != "" {
		base = append(base, rtm.WithEndpoint(creds.Endpoint))
	}
	if creds.AuthEndpoint != "" {
		base = append(base, rtm.WithAuthEndpoint(creds.AuthEndpoint))
	}
	return rtm.New(creds.APIKey, creds.SharedSecret, append(base, opts...)...)
}

// New creates a client authenticated with the stored token.
// Requires credentials and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasToken() {
		return nil, ErrNotLoggedIn
	}
	api, err := NewAPIClient(cfg, rtm.WithTokenSource(cfg.TokenSource()))
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api), nil
}

// NewWithKey creates a client from the credentials alone, for methods that
// need no login. Methods that need one fail with the API's invalid frob error.
func NewWithKey(ctx context.Context, cfg *config.Config) (*Client, error) {
	api, err := NewAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api), nil
}

// NewWithAPI wraps an existing API client (for testing).
func NewWithAPI(api *rtm.Client) *Client {
	return &Client{api: api}
}

// DefaultList returns the list named in the user's settings, or the Inbox.
func (c *Client) DefaultList(ctx context.Context) (service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	lists, err := c.lists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	for _, l := range lists {
		if l.IsDefault {
			return l, nil
		}
	}
	return service.TaskList{}, errors.New("no default list")
}

// ListLists returns all active lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	return c.lists(ctx)
}

func (c *Client) lists(ctx context.Context) ([]service.TaskList, error) {
	settings, err := c.api.GetSettings(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	raw, err := c.api.GetLists(ctx)
	if err != nil {
		return nil, wrapError(err)
	}

	result := make([]service.TaskList, 0, len(raw))
	for _, l := range raw {
		if l.Deleted || l.Archived {
			continue
		}
		list := service.TaskList{
			ID:     strconv.Itoa(l.ID),
			Title:  l.Name,
			Smart:  l.Smart,
			Locked: l.Locked,
		}
		if l.Filter != nil {
			list.Filter = *l.Filter
		}
		result = append(result, list)
	}

	def := -1
	if settings.DefaultList != nil {
		want := strconv.Itoa(*settings.DefaultList)
		for i, l := range result {
			if l.ID == want {
				def = i
				break
			}
		}
	}
	if def < 0 {
		for i, l := range result {
			if strings.EqualFold(l.Title, InboxName) {
				def = i
				break
			}
		}
	}
	if def >= 0 {
		result[def].IsDefault = true
	}
	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}

	var matches []service.TaskList
	for _, list := range lists {
		if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// CreateList creates a new task list.
func (c *Client) CreateList(ctx context.Context, name, filter string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	tl, err := c.getTimeline(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.AddList(ctx, tl, name, filter); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	id, err := parseID("list", listID)
	if err != nil {
		return err
	}
	tl, err := c.getTimeline(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.DeleteList(ctx, tl, id); err != nil {
		return wrapError(err)
	}
	return nil
}

// ListOpenTasks returns open tasks for a list. The API has no paging, so
// the whole list is fetched and the requested page sliced out of it.
func (c *Client) ListOpenTasks(ctx context.Context, listID string, page int) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	open, err := c.openTasks(ctx, listID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(open) {
		return nil, nil
	}
	end := min(start+PageSize, len(open))
	return open[start:end], nil
}

// HasOpenTasks checks if a list has any open tasks.
func (c *Client) HasOpenTasks(ctx context.Context, listID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	open, err := c.openTasks(ctx, listID)
	if err != nil {
		return false, err
	}
	return len(open) > 0, nil
}

func (c *Client) openTasks(ctx context.Context, listID string) ([]service.Task, error) {
	id, err := parseID("list", listID)
	if err != nil {
		return nil, err
	}
	res, err := c.api.GetTasks(ctx, id, openFilter)
	if err != nil {
		return nil, wrapError(err)
	}
	return openTasks(res), nil
}

// openTasks flattens the list/series/task nesting in response order,
// skipping anything completed or deleted.
func openTasks(res model.Tasks) []service.Task {
	var out []service.Task
	for _, list := range res.Lists {
		for _, series := range list.Series {
			for _, t := range series.Tasks {
				if t.Completed != nil || t.Deleted != nil {
					continue
				}
				out = append(out, service.Task{
					ID:         TaskID(rtm.TaskRef{ListID: list.ID, SeriesID: series.ID, TaskID: t.ID}),
					Title:      series.Name,
					Priority:   priority(t.Priority),
					Due:        t.Due,
					HasDueTime: t.HasDueTime,
					Tags:       series.Tags,
				})
			}
		}
	}
	return out
}

func priority(p *int) string {
	if p == nil {
		return "N"
	}
	return strconv.Itoa(*p)
}

// CreateTask creates a new task in the specified list. With smartAdd the
// title is sent with parse=1 and RTM applies Smart Add syntax (^due, !priority,
// #tag); otherwise it is stored as given.
func (c *Client) CreateTask(ctx context.Context, listID, title string, smartAdd bool) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	id, err := parseID("list", listID)
	if err != nil {
		return err
	}
	tl, err := c.getTimeline(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.AddTask(ctx, tl, id, title, smartAdd); err != nil {
		return wrapError(err)
	}
	return nil
}

// CompleteTask marks a task as completed. taskID is the composite ID from
// ListOpenTasks and already names the list, so listID is not consulted.
func (c *Client) CompleteTask(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref, err := ParseTaskID(taskID)
	if err != nil {
		return err
	}
	tl, err := c.getTimeline(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.CompleteTask(ctx, tl, ref); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref, err := ParseTaskID(taskID)
	if err != nil {
		return err
	}
	tl, err := c.getTimeline(ctx)
	if err != nil {
		return err
	}
	if _, err := c.api.DeleteTask(ctx, tl, ref); err != nil {
		return wrapError(err)
	}
	return nil
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	u, err := c.api.TestLogin(ctx)
	if err != nil {
		return service.User{}, wrapError(err)
	}
	user := service.User{ID: strconv.Itoa(u.ID)}
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.FullName != nil {
		user.Fullname = *u.FullName
	}
	return user, nil
}

// Invoke calls any registered method. A "timeline" argument of "new" is
// replaced with this client's timeline.
func (c *Client) Invoke(ctx context.Context, method string, args map[string]string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	callArgs := make(rtm.Args, len(args))
	for k, v := range args {
		callArgs[k] = v
	}
	if callArgs["timeline"] == "new" {
		tl, err := c.getTimeline(ctx)
		if err != nil {
			return nil, err
		}
		callArgs["timeline"] = tl
	}
	v, err := c.api.Call(ctx, method, callArgs)
	if err != nil {
		return nil, wrapError(err)
	}
	return v, nil
}

// getTimeline creates the timeline on first use and reuses it afterwards.
func (c *Client) getTimeline(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timeline != "" {
		return c.timeline, nil
	}
	tl, err := c.api.CreateTimeline(ctx)
	if err != nil {
		return "", wrapError(err)
	}
	c.timeline = tl
	return tl, nil
}

// TaskID encodes a task reference as "listID/seriesID/taskID".
func TaskID(ref rtm.TaskRef) string {
	return fmt.Sprintf("%d/%d/%d", ref.ListID, ref.SeriesID, ref.TaskID)
}

// ParseTaskID decodes an ID produced by TaskID.
func ParseTaskID(id string) (rtm.TaskRef, error) {
	parts := strings.Split(id, "/")
	if len(parts) != 3 {
		return rtm.TaskRef{}, fmt.Errorf("invalid task id: %s", id)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return rtm.TaskRef{}, fmt.Errorf("invalid task id: %s", id)
		}
		nums[i] = n
	}
	return rtm.TaskRef{ListID: nums[0], SeriesID: nums[1], TaskID: nums[2]}, nil
}

func parseID(kind, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", kind, s)
	}
	return n, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	if rtm.IsAuthError(err) {
		return ErrUnauthorized
	}

	var rerr *rtm.RemoteRequestError
	if errors.As(err, &rerr) {
		switch rerr.Code {
		case codeInsufficientPerms:
			return fmt.Errorf("%w: %s (run: mtask login)", ErrInsufficientPerms, rerr.Msg)
		case codeListInvalid, codeTaskInvalid:
			return fmt.Errorf("not found: %s", rerr.Msg)
		}
	}

	return err
}

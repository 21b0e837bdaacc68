// Package model holds the typed entities returned by the Remember The Milk API
// and the parsers that build them from decoded JSON responses.
//
// Every parser accepts the decoded "rsp" object (or an element of one) as a
// map[string]any, the shape produced by encoding/json. Optional scalars are
// pointers and stay nil when the API sent an empty string or left the key
// out. Ordered sub-lists are never nil after a successful parse.
package model

import "time"

// TimeLayout is the timestamp format used by every date field in responses.
const TimeLayout = "2006-01-02T15:04:05Z"

// Task priorities. The API uses "N" for tasks without a priority.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// Freq is a recurrence frequency.
type Freq string

// Recurrence frequencies.
const (
	FreqYearly  Freq = "YEARLY"
	FreqMonthly Freq = "MONTHLY"
	FreqWeekly  Freq = "WEEKLY"
	FreqDaily   Freq = "DAILY"
)

// Task is one occurrence (revision) of a task series.
type Task struct {
	ID int
	// Name is copied from the owning series; the API stores it there.
	Name       string
	Priority   *int
	Due        *time.Time
	HasDueTime bool
	Postponed  int
	Estimate   *time.Duration
	Added      *time.Time
	Completed  *time.Time
	Deleted    *time.Time
	Extra      map[string]any
}

// TaskSeries groups the tasks that share a name, tags, notes and recurrence.
type TaskSeries struct {
	ID           int
	Name         string
	Created      *time.Time
	Modified     *time.Time
	Source       *string
	URL          *string
	LocationID   *int
	Tasks        []Task
	RRule        *Recurrence
	Tags         []string
	Notes        []Note
	Participants []Contact
	Extra        map[string]any
}

// TaskList is a list id with the task series that belong to it.
type TaskList struct {
	ID     int
	Series []TaskSeries
	Extra  map[string]any
}

// Tasks is the top-level result of rtm.tasks.getList.
type Tasks struct {
	Lists []TaskList
	Extra map[string]any
}

// Recurrence is a decoded repeat rule.
type Recurrence struct {
	Freq       Freq
	Interval   *int
	ByDay      []string
	ByMonthDay *int
	Until      *time.Time
	Count      *int
	// Every is false for "after" rules, which repeat relative to completion.
	Every bool
	Rule  string
}

// Note is a note attached to a task series.
type Note struct {
	ID       int
	Title    *string
	Text     string
	Created  *time.Time
	Modified *time.Time
	Extra    map[string]any
}

// List is a named task list.
type List struct {
	ID        int
	Name      string
	Locked    bool
	Archived  bool
	Deleted   bool
	Smart     bool
	SortOrder int
	Position  int
	Filter    *string
	Extra     map[string]any
}

// Contact is another user tasks can be shared with.
type Contact struct {
	ID       int
	FullName *string
	Username *string
	Extra    map[string]any
}

// Group is a named set of contacts.
type Group struct {
	ID       int
	Name     string
	Contacts []Contact
	Extra    map[string]any
}

// User identifies the account behind a token.
type User struct {
	ID       int
	Username *string
	FullName *string
	Extra    map[string]any
}

// Auth is the result of the token exchange and token checks.
type Auth struct {
	Token *string
	Perms *string
	User  User
	Extra map[string]any
}

// Location is a saved place tasks can be attached to.
type Location struct {
	ID        int
	Name      string
	Longitude *float64
	Latitude  *float64
	Zoom      int
	Address   *string
	Viewable  bool
	Extra     map[string]any
}

// Timezone is one entry of rtm.timezones.getList.
type Timezone struct {
	ID            int
	Name          string
	DST           int
	Offset        int
	CurrentOffset int
	Extra         map[string]any
}

// Settings are the user's account preferences.
type Settings struct {
	Timezone    *string
	DateFormat  int
	TimeFormat  int
	DefaultList *int
	Language    *string
	Extra       map[string]any
}

// Time is the result of rtm.time.convert and rtm.time.parse.
type Time struct {
	Timezone  *string
	Time      *time.Time
	Precision *string
	Extra     map[string]any
}

// Argument describes one parameter of an API method.
type Argument struct {
	Name        string
	Optional    bool
	Description *string
}

// MethodError describes an error an API method can return.
type MethodError struct {
	Code        int
	Message     *string
	Description *string
}

// MethodInfo is the API's self-description of one method.
type MethodInfo struct {
	Name          string
	NeedsLogin    bool
	NeedsSigning  bool
	RequiredPerms bool
	Description   *string
	Response      *string
	Arguments     []Argument
	Errors        []MethodError
	Extra         map[string]any
}

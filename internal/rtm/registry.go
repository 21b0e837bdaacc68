package rtm

import (
	"mtask/internal/rtm/model"
)

// Parser builds a typed result from a successful rsp object.
type Parser func(rsp map[string]any) (any, error)

// MethodSpec describes one remote method.
type MethodSpec struct {
	Name string
	// Auth means the call carries auth_token from the client's auth flow.
	Auth     bool
	Required []string
	Optional []string
	Result   Parser
}

func parser[T any](parse func(map[string]any) (T, error)) Parser {
	return func(rsp map[string]any) (any, error) {
		return parse(rsp)
	}
}

var (
	taskListResult = parser(model.ParseTaskList)
	listResult     = parser(model.ParseList)
	statResult     = parser(model.ParseStat)
	noteResult     = parser(model.ParseNote)
	timeResult     = parser(model.ParseTime)
)

// taskArgs identify a single task occurrence inside a timeline.
var taskArgs = []string{"timeline", "list_id", "taskseries_id", "task_id"}

func withTask(extra ...string) []string {
	return append(append([]string{}, taskArgs...), extra...)
}

// Methods is the full method table, grouped by namespace.
var Methods = []MethodSpec{
	{Name: "rtm.auth.checkToken", Required: []string{"auth_token"}, Result: parser(model.ParseAuth)},
	{Name: "rtm.auth.getFrob", Result: parser(model.ParseFrob)},
	{Name: "rtm.auth.getToken", Required: []string{"frob"}, Result: parser(model.ParseAuth)},

	{Name: "rtm.contacts.add", Auth: true, Required: []string{"timeline", "contact"}, Result: parser(model.ParseContact)},
	{Name: "rtm.contacts.delete", Auth: true, Required: []string{"timeline", "contact_id"}, Result: statResult},
	{Name: "rtm.contacts.getList", Auth: true, Result: parser(model.ParseContacts)},

	{Name: "rtm.groups.add", Auth: true, Required: []string{"timeline", "group"}, Result: parser(model.ParseGroup)},
	{Name: "rtm.groups.addContact", Auth: true, Required: []string{"timeline", "group_id", "contact_id"}, Result: statResult},
	{Name: "rtm.groups.delete", Auth: true, Required: []string{"timeline", "group_id"}, Result: statResult},
	{Name: "rtm.groups.getList", Auth: true, Result: parser(model.ParseGroups)},
	{Name: "rtm.groups.removeContact", Auth: true, Required: []string{"timeline", "group_id", "contact_id"}, Result: statResult},

	{Name: "rtm.lists.add", Auth: true, Required: []string{"timeline", "name"}, Optional: []string{"filter"}, Result: listResult},
	{Name: "rtm.lists.archive", Auth: true, Required: []string{"timeline", "list_id"}, Result: listResult},
	{Name: "rtm.lists.delete", Auth: true, Required: []string{"timeline", "list_id"}, Result: listResult},
	{Name: "rtm.lists.getList", Auth: true, Result: parser(model.ParseLists)},
	{Name: "rtm.lists.setDefaultList", Auth: true, Required: []string{"timeline"}, Optional: []string{"list_id"}, Result: statResult},
	{Name: "rtm.lists.setName", Auth: true, Required: []string{"timeline", "list_id", "name"}, Result: listResult},
	{Name: "rtm.lists.unarchive", Auth: true, Required: []string{"timeline", "list_id"}, Result: listResult},

	{Name: "rtm.locations.getList", Auth: true, Result: parser(model.ParseLocations)},

	{Name: "rtm.reflection.getMethodInfo", Required: []string{"method_name"}, Result: parser(model.ParseMethodInfo)},
	{Name: "rtm.reflection.getMethods", Result: parser(model.ParseMethods)},

	{Name: "rtm.settings.getList", Auth: true, Result: parser(model.ParseSettings)},

	{Name: "rtm.tasks.add", Auth: true, Required: []string{"timeline", "name"}, Optional: []string{"list_id", "parse"}, Result: taskListResult},
	{Name: "rtm.tasks.addTags", Auth: true, Required: withTask("tags"), Result: taskListResult},
	{Name: "rtm.tasks.complete", Auth: true, Required: withTask(), Result: taskListResult},
	{Name: "rtm.tasks.delete", Auth: true, Required: withTask(), Result: taskListResult},
	{Name: "rtm.tasks.getList", Auth: true, Optional: []string{"list_id", "filter", "last_sync"}, Result: parser(model.ParseTasks)},
	{Name: "rtm.tasks.movePriority", Auth: true, Required: withTask("direction"), Result: taskListResult},
	{Name: "rtm.tasks.moveTo", Auth: true, Required: []string{"timeline", "from_list_id", "to_list_id", "taskseries_id", "task_id"}, Result: taskListResult},
	{Name: "rtm.tasks.postpone", Auth: true, Required: withTask(), Result: taskListResult},
	{Name: "rtm.tasks.removeTags", Auth: true, Required: withTask("tags"), Result: taskListResult},
	{Name: "rtm.tasks.setDueDate", Auth: true, Required: withTask(), Optional: []string{"due", "has_due_time", "parse"}, Result: taskListResult},
	{Name: "rtm.tasks.setEstimate", Auth: true, Required: withTask(), Optional: []string{"estimate"}, Result: taskListResult},
	{Name: "rtm.tasks.setLocation", Auth: true, Required: withTask(), Optional: []string{"location_id"}, Result: taskListResult},
	{Name: "rtm.tasks.setName", Auth: true, Required: withTask("name"), Result: taskListResult},
	{Name: "rtm.tasks.setPriority", Auth: true, Required: withTask(), Optional: []string{"priority"}, Result: taskListResult},
	{Name: "rtm.tasks.setRecurrence", Auth: true, Required: withTask(), Optional: []string{"repeat"}, Result: taskListResult},
	{Name: "rtm.tasks.setTags", Auth: true, Required: withTask(), Optional: []string{"tags"}, Result: taskListResult},
	{Name: "rtm.tasks.setURL", Auth: true, Required: withTask(), Optional: []string{"url"}, Result: taskListResult},
	{Name: "rtm.tasks.uncomplete", Auth: true, Required: withTask(), Result: taskListResult},

	{Name: "rtm.tasks.notes.add", Auth: true, Required: withTask("note_title", "note_text"), Result: noteResult},
	{Name: "rtm.tasks.notes.delete", Auth: true, Required: []string{"timeline", "note_id"}, Result: statResult},
	{Name: "rtm.tasks.notes.edit", Auth: true, Required: []string{"timeline", "note_id", "note_title", "note_text"}, Result: noteResult},

	{Name: "rtm.test.echo", Result: parser(model.ParseEcho)},
	{Name: "rtm.test.login", Auth: true, Result: parser(model.ParseUser)},

	{Name: "rtm.time.convert", Required: []string{"to_timezone"}, Optional: []string{"from_timezone", "time"}, Result: timeResult},
	{Name: "rtm.time.parse", Required: []string{"text"}, Optional: []string{"timezone", "dateformat"}, Result: timeResult},

	{Name: "rtm.timelines.create", Auth: true, Result: parser(model.ParseTimeline)},

	{Name: "rtm.timezones.getList", Result: parser(model.ParseTimezones)},

	{Name: "rtm.transactions.undo", Auth: true, Required: []string{"timeline", "transaction_id"}, Result: statResult},
}

var methodIndex = func() map[string]int {
	idx := make(map[string]int, len(Methods))
	for i, m := range Methods {
		idx[m.Name] = i
	}
	return idx
}()

// Lookup returns the spec registered under name.
func Lookup(name string) (MethodSpec, bool) {
	i, ok := methodIndex[name]
	if !ok {
		return MethodSpec{}, false
	}
	return Methods[i], true
}

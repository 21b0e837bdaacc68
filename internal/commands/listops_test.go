package commands_test

import (
	"context"
	"strings"
	"testing"

	"mtask/internal/commands"
	"mtask/internal/exitcode"
	"mtask/internal/service"
	"mtask/internal/testutil"
)

func TestAddCommand_SmartAdd(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.AddCmd{}
	cmd.SetSmart(true)

	_, stderr, code := runCommand(t, cmd, svc, []string{"Pay", "rent", "^friday", "!1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if len(svc.SmartAdded) != 1 || svc.SmartAdded[0] != "Pay rent ^friday !1" {
		t.Errorf("unexpected smart adds %v", svc.SmartAdded)
	}
}

func TestAddCommand_PlainTitleNotParsed(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Read", "#1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if len(svc.SmartAdded) != 0 {
		t.Errorf("title should not be parsed, got %v", svc.SmartAdded)
	}
}

func TestAddCommand_SmartListRejected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddListWith(service.TaskList{ID: "104", Title: "Today", Smart: true, Filter: "due:today"})
	cmd := &commands.AddCmd{}
	cmd.SetListName("today")

	_, stderr, code := runCommand(t, cmd, svc, []string{"Nope"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: cannot add tasks to smart list: Today\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestCreateListCommand_SmartList(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.CreateListCmd{}
	cmd.SetFilter(" priority:1 ")

	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Urgent"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	list, err := svc.ResolveList(context.Background(), "Urgent")
	if err != nil {
		t.Fatalf("ResolveList: %v", err)
	}
	if !list.Smart || list.Filter != "priority:1" {
		t.Errorf("expected smart list with filter, got %#v", list)
	}
}

func TestCreateListCommand_AlreadyExists(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("work", "Work")

	_, stderr, code := runCommand(t, &commands.CreateListCmd{}, svc, []string{"work"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: list already exists: work\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmListCommand_Locked(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddListWith(service.TaskList{ID: "105", Title: "Sent", Locked: true})

	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Sent"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: cannot delete locked list: Sent\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmListCommand_SmartListSkipsEmptyCheck(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddListWith(service.TaskList{ID: "104", Title: "Today", Smart: true, Filter: "due:today"})
	svc.AddTask("104", "1/1/1", "Shows up in the search")

	stdout, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Today"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
}

func TestRmListCommand_DefaultList(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Inbox"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: cannot delete default list\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListsCommand_IDs(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddListWith(service.TaskList{ID: "104", Title: "Today", Smart: true, Filter: "due:today"})
	cmd := &commands.ListsCmd{}
	cmd.SetIDs(true)

	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "@default Inbox [default]\n104      Today [smart] due:today\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListsCommand_JSON(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.ListsCmd{}
	cmd.SetJSON(true)

	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := `[
  {
    "id": "@default",
    "title": "Inbox",
    "default": true,
    "smart": false,
    "locked": false
  }
]
`
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListsCommand_IDsAndJSON(t *testing.T) {
	cmd := &commands.ListsCmd{}
	cmd.SetIDs(true)
	cmd.SetJSON(true)

	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: cannot use both --ids and --json\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_IDs(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("@default", "100/1/11", "Default task")
	svc.AddList("101", "Work")
	svc.AddTask("101", "101/2/21", "Report")

	cmd := &commands.ListCmd{}
	cmd.SetPage(1)
	cmd.SetIDs(true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  Default task  (100/1/11)\n------------\nWork\n------------\n   a   1  Report  (101/2/21)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestHelpCommand_ForCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"addlist"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "createlist - Create a new list\n") || !strings.Contains(stdout, "Aliases: addlist\n") {
		t.Errorf("unexpected help %q", stdout)
	}
}

func TestHelpCommand_UnknownCommand(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"frobnicate"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	cmd := &commands.VersionCmd{}
	cmd.SetVerbose(true)

	stdout, _, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 4 || lines[0] != "mtask 0.1.0" || !strings.HasPrefix(lines[2], "api:      https://api.rememberthemilk.com/") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRegistry_AliasClash(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&commands.AddCmd{}); err == nil || err.Error() != "command already registered: add" {
		t.Errorf("expected name clash, got %v", err)
	}
	if err := r.Register(&commands.DoneCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	cmd, ok := r.Find("complete")
	if !ok || cmd.Name() != "done" {
		t.Errorf("alias lookup failed: %v %v", cmd, ok)
	}
	if all := r.All(); len(all) != 2 || all[0].Name() != "add" || all[1].Name() != "done" {
		t.Errorf("unexpected All: %v", all)
	}
}

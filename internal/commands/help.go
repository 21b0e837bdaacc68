package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd prints the overview, or the usage of one command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "mtask help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "%s - %s\n\nUsage:\n  %s\n", cmd.Name(), cmd.Synopsis(), cmd.Usage())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
	}
	return exitcode.Success
}

const helpText = `Usage:
  mtask                                              List all open tasks
  mtask list [common flags] [--page <n>] [--ids] <list-name>
  mtask add [common flags] [--list <list-name>] [--smart] <title...>
  mtask done [common flags] [--list <list-name>] <ref...>
  mtask rm [common flags] [--list <list-name>] <ref...>
  mtask lists [common flags] [--ids | --json]
  mtask createlist [common flags] [--filter <search>] <list-name>
  mtask rmlist [common flags] [--force] <list-name>
  mtask call [common flags] [--describe] <method> [key=value...]
  mtask whoami [common flags]
  mtask login [common flags] [--force]
  mtask logout [common flags] [--all]
  mtask help [command]
  mtask version [--verbose]

Aliases: create = add, complete = done, addlist = createlist

Task references:
  3          third task of the default list
  b12        twelfth task of list b
  1/22/333   task ID (list/series/task), shown by --ids

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`

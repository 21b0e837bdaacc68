package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/rtm"
	"mtask/internal/service"
)

// Version is the application version. Set at build time.
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command.
type VersionCmd struct {
	verbose bool
}

// SetVerbose sets the verbose flag (for testing).
func (c *VersionCmd) SetVerbose(verbose bool) {
	c.verbose = verbose
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "mtask version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "mtask %s\n", Version)
	if c.verbose {
		fmt.Fprintf(out, "go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "api:      %s (%d methods)\n", rtm.DefaultEndpoint, len(rtm.Methods))
		fmt.Fprintf(out, "config:   %s\n", cfg.Dir)
	}
	return exitcode.Success
}

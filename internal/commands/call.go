package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/output"
	"mtask/internal/rtm"
	"mtask/internal/service"
)

func init() {
	Register(&CallCmd{})
}

// CallCmd invokes any API method and prints the parsed result as JSON.
type CallCmd struct {
	describe bool
}

// SetDescribe sets the describe flag (for testing).
func (c *CallCmd) SetDescribe(describe bool) {
	c.describe = describe
}

func (c *CallCmd) Name() string      { return "call" }
func (c *CallCmd) Aliases() []string { return nil }
func (c *CallCmd) Synopsis() string  { return "Call an API method" }
func (c *CallCmd) Usage() string {
	return "mtask call [--describe] <method> [key=value...]"
}
func (c *CallCmd) NeedsAuth() bool { return true }

// Access asks for a login only when the method needs one. Describing a
// method, and arguments Run rejects before calling out, need no service.
func (c *CallCmd) Access(args []string) Access {
	if c.describe || len(args) == 0 {
		return AccessNone
	}
	spec, ok := rtm.Lookup(methodName(args[0]))
	switch {
	case !ok:
		return AccessNone
	case spec.Auth:
		return AccessToken
	}
	return AccessKey
}

func methodName(name string) string {
	if !strings.HasPrefix(name, "rtm.") {
		return "rtm." + name
	}
	return name
}

func (c *CallCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.describe, "describe", false, "")
}

func (c *CallCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: method required")
		return exitcode.UserError
	}

	method := methodName(args[0])
	spec, ok := rtm.Lookup(method)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown method: %s\n", method)
		return exitcode.UserError
	}

	if c.describe {
		describeMethod(out, spec)
		return exitcode.Success
	}

	params := make(map[string]string, len(args)-1)
	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			fmt.Fprintf(errOut, "error: invalid argument: %s (want key=value)\n", arg)
			return exitcode.UserError
		}
		params[key] = value
	}
	result, err := svc.Invoke(ctx, method, params)
	var missing *rtm.MissingParameterError
	if errors.As(err, &missing) {
		fmt.Fprintf(errOut, "error: missing parameter: %s\n", missing.Param)
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if err := output.FormatJSON(out, result); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

func describeMethod(w io.Writer, spec rtm.MethodSpec) {
	auth := "no"
	if spec.Auth {
		auth = "yes"
	}
	fmt.Fprintln(w, spec.Name)
	fmt.Fprintf(w, "  auth:     %s\n", auth)
	fmt.Fprintf(w, "  required: %s\n", joinOrDash(spec.Required))
	fmt.Fprintf(w, "  optional: %s\n", joinOrDash(spec.Optional))
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " ")
}

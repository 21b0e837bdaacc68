package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"mtask/internal/backend/rtmtasks"
	"mtask/internal/config"
	"mtask/internal/exitcode"
	"mtask/internal/logging"
	"mtask/internal/rtm"
	"mtask/internal/service"
)

const (
	// How often login asks whether the frob has been approved.
	defaultPollInterval = 3 * time.Second

	// How long login waits for the user to approve access.
	defaultApprovalTimeout = 5 * time.Minute

	// Token validation timeout
	tokenCheckTimeout = 10 * time.Second
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	// PollInterval and Timeout override the defaults (for testing).
	PollInterval time.Duration
	Timeout      time.Duration

	force bool
}

// SetForce sets the force flag (for testing).
func (c *LoginCmd) SetForce(force bool) {
	c.force = force
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with Remember The Milk" }
func (c *LoginCmd) Usage() string     { return "mtask login [common flags] [--force]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	api, err := rtmtasks.NewAPIClient(cfg)
	if errors.Is(err, config.ErrNoCredentials) {
		printCredentialsHelp(cfg, errOut)
		return exitcode.AuthError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	// Check if already logged in (token exists and is accepted)
	if !c.force && cfg.HasToken() && isTokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	authURL, err := api.AuthURL(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to start authentication: %v\n", err)
		return exitcode.AuthError
	}

	// Print URL to stderr
	fmt.Fprintln(errOut, "Open this URL in your browser and allow access:")
	fmt.Fprintln(errOut, authURL)
	fmt.Fprintln(errOut, "Waiting for approval...")

	token, err := c.waitForApproval(ctx, api, loggerFor(cfg, c.Name()))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.SaveToken(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// waitForApproval exchanges the frob until the user has approved it.
func (c *LoginCmd) waitForApproval(ctx context.Context, api *rtm.Client, logger *slog.Logger) (*oauth2.Token, error) {
	interval, timeout := c.PollInterval, c.Timeout
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if timeout <= 0 {
		timeout = defaultApprovalTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		token, err := api.Token(ctx)
		if err == nil {
			return token, nil
		}
		if !rtm.IsPendingApproval(err) {
			return nil, fmt.Errorf("failed to get token: %w", err)
		}
		logger.Debug("frob not approved yet", slog.Int("attempt", attempt))

		select {
		case <-ctx.Done():
			return nil, errors.New("cancelled")
		case <-deadline.C:
			return nil, errors.New("timed out waiting for approval")
		case <-ticker.C:
		}
	}
}

// isTokenValid reports whether the stored token is accepted by the service.
func isTokenValid(ctx context.Context, cfg *config.Config) bool {
	api, err := rtmtasks.NewAPIClient(cfg, rtm.WithTokenSource(cfg.TokenSource()))
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()
	_, err = api.CheckToken(ctx)
	return err == nil
}

func printCredentialsHelp(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: API credentials not found in %s\n\n", cfg.CredentialsPath())
	fmt.Fprintln(errOut, "To use Remember The Milk you need an API key:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Request one at https://www.rememberthemilk.com/services/api/keys.rtm")
	fmt.Fprintln(errOut, "2. Save the key and shared secret as:")
	fmt.Fprintf(errOut, "   %s\n", cfg.CredentialsPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, `   api_key = "..."`)
	fmt.Fprintln(errOut, `   shared_secret = "..."`)
	fmt.Fprintln(errOut, "")
	fmt.Fprintf(errOut, "   or set %s and %s.\n", config.EnvAPIKey, config.EnvSharedSecret)
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'mtask login' again.")
}

// loggerFor returns the configured logger tagged with the command name.
func loggerFor(cfg *config.Config, command string) *slog.Logger {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return logging.WithCommand(logger, command)
}

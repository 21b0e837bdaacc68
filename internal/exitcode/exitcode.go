// Package exitcode defines the process exit codes of mtask.
package exitcode

const (
	// Success is a completed command.
	Success = 0

	// UserError covers bad arguments, unknown lists and task references.
	UserError = 1

	// AuthError covers missing or invalid credentials and tokens.
	// Rerunning "mtask login" is the usual fix.
	AuthError = 2

	// BackendError covers network failures and errors reported by the
	// service.
	BackendError = 3
)

// Name returns a short label for code, used in debug logs.
func Name(code int) string {
	switch code {
	case Success:
		return "success"
	case UserError:
		return "user error"
	case AuthError:
		return "auth error"
	case BackendError:
		return "backend error"
	}
	return "unknown"
}

package rtm

import (
	"errors"
	"fmt"
)

// Error codes. Negative codes are produced locally; positive codes come from
// the service's err element.
const (
	CodeUnknown     = -999
	CodeNetwork     = -10
	CodeDecode      = -20
	CodeLoginFailed = 98
	CodeInvalidFrob = 101
)

var (
	// ErrSystem matches every failure that is not the service rejecting the
	// request: transport problems, undecodable bodies and failures without a
	// usable error element.
	ErrSystem = errors.New("rtm: system error")

	// ErrUnknownMethod is returned by Call for names missing from Methods.
	ErrUnknownMethod = errors.New("rtm: unknown method")
)

// NetworkError reports a failed connection or a non-2xx HTTP status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot connect to RTM (%d): %v", CodeNetwork, e.Err)
}

func (e *NetworkError) Unwrap() error        { return e.Err }
func (e *NetworkError) Is(target error) bool { return target == ErrSystem }

// Code returns CodeNetwork.
func (e *NetworkError) Code() int { return CodeNetwork }

// DecodeError reports a response body that is not a JSON object with an rsp
// member.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot parse response (%d): %v", CodeDecode, e.Err)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrSystem }

// Code returns CodeDecode.
func (e *DecodeError) Code() int { return CodeDecode }

// RemoteSystemError is a failed response that carried no usable err element.
type RemoteSystemError struct{}

func (e *RemoteSystemError) Error() string {
	return fmt.Sprintf("an unknown error has occurred (%d)", CodeUnknown)
}

func (e *RemoteSystemError) Is(target error) bool { return target == ErrSystem }

// Code returns CodeUnknown.
func (e *RemoteSystemError) Code() int { return CodeUnknown }

// RemoteRequestError is the service rejecting a request, such as
// {"code": "98", "msg": "Login failed / Invalid auth token"}.
type RemoteRequestError struct {
	Code int
	Msg  string
}

func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Msg, e.Code)
}

// MissingParameterError is returned before any network I/O when a required
// parameter was not supplied.
type MissingParameterError struct {
	Method string
	Param  string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("rtm: %s: missing required parameter %s", e.Method, e.Param)
}

// IsAuthError reports whether err means the stored credentials were rejected.
func IsAuthError(err error) bool {
	var rerr *RemoteRequestError
	return errors.As(err, &rerr) && rerr.Code == CodeLoginFailed
}

// Package stmerr defines the sentinel error kinds returned at the
// boundaries of the sampler: bad input files, malformed transitions,
// invalid parameter configuration, and resume-file corruption.
package stmerr

import "fmt"

// Kind identifies which boundary contract was violated.
type Kind string

const (
	InputSchema           Kind = "input_schema"
	InvalidTransition     Kind = "invalid_transition"
	ParameterError        Kind = "parameter_error"
	ResumeVersionMismatch Kind = "resume_version_mismatch"
	ResumeCorrupt         Kind = "resume_corrupt"
	InvalidConfig         Kind = "invalid_config"
)

// Error wraps an underlying cause with a Kind so callers can branch on
// errors.As without parsing message text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, stmerr.ErrInputSchema)-style checks by
// comparing only the Kind a target *Error carries.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around an existing error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel values usable with errors.Is for kind-only comparisons.
var (
	ErrInputSchema           = &Error{Kind: InputSchema}
	ErrInvalidTransition     = &Error{Kind: InvalidTransition}
	ErrParameterError        = &Error{Kind: ParameterError}
	ErrResumeVersionMismatch = &Error{Kind: ResumeVersionMismatch}
	ErrResumeCorrupt         = &Error{Kind: ResumeCorrupt}
	ErrInvalidConfig         = &Error{Kind: InvalidConfig}
)

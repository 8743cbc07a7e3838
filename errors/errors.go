package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the request pipeline the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // request envelope decoding
	PhaseDispatch Phase = "dispatch" // method lookup and scheduling
	PhaseRegistry Phase = "registry" // handle table operations
	PhaseEngine   Phase = "engine"   // collaborator wallet engine
	PhaseEncode   Phase = "encode"   // response envelope encoding
	PhaseDeliver  Phase = "deliver"  // completion port hand-off
	PhaseRuntime  Phase = "runtime"  // supervisor lifecycle
)

// Kind categorizes the error. Kinds are stable wire values: they cross the
// boundary verbatim in error envelopes.
type Kind string

const (
	KindInvalidArgument    Kind = "InvalidArgument"
	KindUnknownMethod      Kind = "UnknownMethod"
	KindHandleNotFound     Kind = "HandleNotFound"
	KindTypeMismatch       Kind = "TypeMismatch"
	KindRuntimeUnavailable Kind = "RuntimeUnavailable"
	KindInternalError      Kind = "InternalError"
	KindCancelled          Kind = "Cancelled"
	KindPortClosed         Kind = "PortClosed"
)

// Error is the structured error type used on every gateway path.
// Collaborator errors that already carry a Kind pass through unchanged;
// everything else is wrapped before it reaches the boundary.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Method string
	Handle uint64
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Method != "" {
		b.WriteString(" method=")
		b.WriteString(e.Method)
	}
	if e.Handle != 0 {
		fmt.Fprintf(&b, " handle=%d", e.Handle)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two gateway errors match
// when their kinds match; phase is diagnostic only.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Phase == "" || e.Phase == t.Phase)
	}
	return false
}

// Message returns the human-readable part that crosses the boundary.
// The cause chain is flattened into it; phases stay host-side.
func (e *Error) Message() string {
	if e.Detail != "" && e.Cause != nil {
		return e.Detail + ": " + e.Cause.Error()
	}
	if e.Detail != "" {
		return e.Detail
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

// KindOf extracts the wire kind from any error. Errors that are not
// gateway errors are reported as InternalError.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindInternalError
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Method sets the method name the request named
func (b *Builder) Method(m string) *Builder {
	b.err.Method = m
	return b
}

// Handle sets the handle the request referenced
func (b *Builder) Handle(h uint64) *Builder {
	b.err.Handle = h
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidArgument creates a malformed-payload error for a method
func InvalidArgument(method, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidArgument,
		Method: method,
		Detail: detail,
		Cause:  cause,
	}
}

// UnknownMethod creates a dispatch-table miss error
func UnknownMethod(method string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindUnknownMethod,
		Method: method,
		Detail: fmt.Sprintf("no handler registered for %q", method),
	}
}

// HandleNotFound creates an invalid/released handle error
func HandleNotFound(handle uint64) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindHandleNotFound,
		Handle: handle,
		Detail: fmt.Sprintf("handle %d is not registered", handle),
	}
}

// TypeMismatch is returned when a handle resolves to the wrong object
// variant for the requested method.
func TypeMismatch(method string, handle uint64, want, got string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindTypeMismatch,
		Method: method,
		Handle: handle,
		Detail: fmt.Sprintf("method expects a %s, handle holds a %s", want, got),
	}
}

// RuntimeUnavailable is returned when the supervisor is not running.
func RuntimeUnavailable(detail string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindRuntimeUnavailable,
		Detail: detail,
	}
}

// Internal wraps a caught handler fault (including recovered panics).
func Internal(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternalError,
		Detail: detail,
		Cause:  cause,
	}
}

// Cancelled marks a subscription torn down before its stream finished.
func Cancelled(handle uint64) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindCancelled,
		Handle: handle,
		Detail: "subscription cancelled",
	}
}

// EncodeFailed creates a response-encoding error
func EncodeFailed(method string, cause error) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInternalError,
		Method: method,
		Detail: "encode response",
		Cause:  cause,
	}
}

// Passthrough preserves the kind of a collaborator error while stamping
// the gateway phase it surfaced in. Non-gateway errors become engine-phase
// internal errors.
func Passthrough(phase Phase, err error) *Error {
	if e, ok := err.(*Error); ok {
		return &Error{
			Phase:  phase,
			Kind:   e.Kind,
			Method: e.Method,
			Handle: e.Handle,
			Detail: e.Detail,
			Cause:  e.Cause,
		}
	}
	return &Error{
		Phase: phase,
		Kind:  KindInternalError,
		Cause: err,
	}
}

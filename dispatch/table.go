package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/errors"
	"github.com/wippyai/wallet-bridge/registry"
)

// Request is one decoded invocation: the raw argument payload plus the
// resolved handle object, if the request named one. Object is already
// retained; the pipeline releases it after the handler returns.
type Request struct {
	Method  string
	Payload []byte
	Handle  registry.Handle
	Object  *registry.Object
}

// Handler processes one request and produces a result value for the ok
// envelope. Handlers run on supervisor workers and must not block
// synchronously; blocking collaborator calls are detached by the pipeline
// before the handler sees them.
type Handler func(ctx context.Context, req Request) (any, error)

// Table maps method names to handlers. It is built once at start-up,
// sealed, and read-only thereafter, so lookups need no locking.
type Table struct {
	handlers map[string]Handler
	streams  map[string]StreamHandler
	sealed   atomic.Bool
}

func NewTable() *Table {
	return &Table{
		handlers: make(map[string]Handler),
		streams:  make(map[string]StreamHandler),
	}
}

// Register adds a handler. Registration fails after Seal and on duplicate
// method names.
func (t *Table) Register(method string, h Handler) error {
	if method == "" {
		return fmt.Errorf("method name cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler for %q cannot be nil", method)
	}
	if t.sealed.Load() {
		return fmt.Errorf("table is sealed, cannot register %q", method)
	}
	if _, dup := t.handlers[method]; dup {
		return fmt.Errorf("method %q already registered", method)
	}
	t.handlers[method] = h
	return nil
}

// Seal freezes the table. Idempotent.
func (t *Table) Seal() {
	t.sealed.Store(true)
}

// Lookup resolves a method name. A miss yields UnknownMethod.
func (t *Table) Lookup(method string) (Handler, error) {
	h, ok := t.handlers[method]
	if !ok {
		return nil, errors.UnknownMethod(method)
	}
	return h, nil
}

// Methods returns the registered method names, for diagnostics.
func (t *Table) Methods() []string {
	out := make([]string, 0, len(t.handlers))
	for m := range t.handlers {
		out = append(out, m)
	}
	return out
}

// Invoke runs a handler with panic containment. A panicking handler
// produces an InternalError carrying a diagnostic string; it never
// propagates past the dispatch boundary.
func Invoke(ctx context.Context, h Handler, req Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("handler panic contained",
				zap.String("method", req.Method),
				zap.Uint64("handle", uint64(req.Handle)),
				zap.Any("panic", r))
			result = nil
			err = errors.Internal(errors.PhaseDispatch,
				fmt.Sprintf("handler for %q panicked: %v", req.Method, r), nil)
		}
	}()
	return h(ctx, req)
}

// Expect resolves the request's object to the wanted variant. Requests
// without an object fail with HandleNotFound; a wrong variant or an
// unexpected concrete type fails with TypeMismatch.
func Expect[T any](req Request, want registry.Kind) (T, error) {
	var zero T
	if req.Object == nil {
		return zero, errors.HandleNotFound(uint64(req.Handle))
	}
	if req.Object.Kind() != want {
		return zero, errors.TypeMismatch(req.Method, uint64(req.Handle),
			want.String(), req.Object.Kind().String())
	}
	v, ok := req.Object.Value().(T)
	if !ok {
		return zero, errors.TypeMismatch(req.Method, uint64(req.Handle),
			want.String(), fmt.Sprintf("%T", req.Object.Value()))
	}
	return v, nil
}

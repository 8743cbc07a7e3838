package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/errors"
)

// Pump produces a subscription's events. It runs detached on the
// supervisor, calls emit for each record in production order, and returns
// nil once ctx is cancelled or the upstream error otherwise.
type Pump func(ctx context.Context, emit func(any)) error

// StreamHandler starts a subscription in two phases. The setup phase runs
// with the resolved parent object (e.g. a transport) and returns the pump;
// the pipeline releases the parent reference before the pump starts, so a
// long-lived stream never pins its parent handle's object.
type StreamHandler func(ctx context.Context, req Request) (Pump, error)

// RegisterStream adds a subscription handler. Same rules as Register:
// no duplicates, nothing after Seal.
func (t *Table) RegisterStream(method string, h StreamHandler) error {
	if method == "" {
		return fmt.Errorf("method name cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("stream handler for %q cannot be nil", method)
	}
	if t.sealed.Load() {
		return fmt.Errorf("table is sealed, cannot register %q", method)
	}
	if _, dup := t.streams[method]; dup {
		return fmt.Errorf("stream method %q already registered", method)
	}
	t.streams[method] = h
	return nil
}

// LookupStream resolves a subscription method name.
func (t *Table) LookupStream(method string) (StreamHandler, error) {
	h, ok := t.streams[method]
	if !ok {
		return nil, errors.UnknownMethod(method)
	}
	return h, nil
}

// StreamMethods returns the registered subscription method names.
func (t *Table) StreamMethods() []string {
	out := make([]string, 0, len(t.streams))
	for m := range t.streams {
		out = append(out, m)
	}
	return out
}

// InvokeStream runs a stream setup phase with panic containment.
func InvokeStream(ctx context.Context, h StreamHandler, req Request) (pump Pump, err error) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("stream setup panic contained",
				zap.String("method", req.Method),
				zap.Any("panic", r))
			pump = nil
			err = errors.Internal(errors.PhaseDispatch,
				fmt.Sprintf("stream setup for %q panicked: %v", req.Method, r), nil)
		}
	}()
	return h(ctx, req)
}

// RunPump drives a pump with panic containment. A panicking pump reads as
// an upstream failure so the subscription still terminates cleanly.
func RunPump(ctx context.Context, p Pump, emit func(any)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("stream pump panic contained", zap.Any("panic", r))
			err = errors.Internal(errors.PhaseDispatch,
				fmt.Sprintf("stream pump panicked: %v", r), nil)
		}
	}()
	return p(ctx, emit)
}

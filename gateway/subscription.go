package gateway

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/dispatch"
	"github.com/wippyai/wallet-bridge/errors"
	"github.com/wippyai/wallet-bridge/port"
	"github.com/wippyai/wallet-bridge/registry"
)

// subscription is the native object parked behind a subscription handle.
// Destroy runs when the last reference drops, which is how releasing the
// handle reaches the pump: cancellation flows through the context, and the
// pump delivers the terminal record.
type subscription struct {
	cancel context.CancelFunc
	stream *port.Stream
	done   chan struct{}
}

func (s *subscription) Destroy() {
	s.cancel()
}

// Done is closed once the pump has delivered its terminal record.
func (s *subscription) Done() <-chan struct{} { return s.done }

// Subscribe starts a streamed operation. The handle is returned
// synchronously; events arrive on eventPort in production order until the
// terminal record. The setup phase (which may call the collaborator) runs
// on the executor, so a failed setup surfaces as the terminal record
// rather than blocking the caller.
func (g *Gateway) Subscribe(method string, argsJSON []byte, parent registry.Handle, eventPort port.Port) (registry.Handle, Status) {
	if eventPort == nil {
		return 0, StatusNoPort
	}

	handler, lookupErr := g.table.LookupStream(method)
	if lookupErr != nil {
		port.NewStream(0, eventPort).Errored(lookupErr)
		return 0, StatusOK
	}

	if !g.sup.Running() {
		port.NewStream(0, eventPort).Errored(errors.RuntimeUnavailable("executor is not running"))
		return 0, StatusRuntimeUnavailable
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	h := g.reg.Register(registry.KindSubscription, sub)
	if h == 0 {
		cancel()
		port.NewStream(0, eventPort).Errored(errors.RuntimeUnavailable("registry closed"))
		return 0, StatusRuntimeUnavailable
	}
	sub.stream = port.NewStream(uint64(h), eventPort)

	req := dispatch.Request{Method: method, Payload: argsJSON, Handle: parent}

	err := g.sup.Detach(func(taskCtx context.Context) {
		defer close(sub.done)
		// Stop the stream if the supervisor shuts down, not only on
		// explicit unsubscribe.
		stop := context.AfterFunc(taskCtx, cancel)
		defer stop()
		g.runStream(streamCtx, handler, req, sub)
		g.reg.Release(h)
	})
	if err != nil {
		close(sub.done)
		g.reg.Release(h)
		sub.stream.Errored(errors.RuntimeUnavailable(err.Error()))
		return 0, StatusRuntimeUnavailable
	}

	metricSubscriptions.Inc()
	return h, StatusOK
}

func (g *Gateway) runStream(ctx context.Context, handler dispatch.StreamHandler, req dispatch.Request, sub *subscription) {
	defer metricSubscriptions.Dec()

	// Setup phase: resolve the parent handle, hand it to the collaborator,
	// and drop the reference before the pump starts. The stream must not
	// keep its parent object alive.
	if req.Handle != 0 {
		obj, ok := g.reg.Lookup(req.Handle)
		if !ok {
			sub.stream.Errored(errors.HandleNotFound(uint64(req.Handle)))
			return
		}
		req.Object = obj
	}

	pump, err := dispatch.InvokeStream(ctx, handler, req)
	if req.Object != nil {
		req.Object.Release()
		req.Object = nil
	}
	if err != nil {
		sub.stream.Errored(err)
		return
	}

	emit := func(v any) {
		sub.stream.Emit(v)
		metricEventsDelivered.Inc()
	}

	pumpErr := dispatch.RunPump(ctx, pump, emit)
	switch {
	case pumpErr == nil, stderrors.Is(pumpErr, context.Canceled):
		sub.stream.Cancelled()
	default:
		Logger().Debug("subscription stream failed",
			zap.String("method", req.Method),
			zap.Error(pumpErr))
		sub.stream.Errored(pumpErr)
	}
}

// Unsubscribe cancels a subscription stream. The underlying pump observes
// cancellation and delivers the terminal cancelled record within bounded
// time. Releasing the handle directly has the same effect.
func (g *Gateway) Unsubscribe(h registry.Handle) Status {
	obj, ok := g.reg.Lookup(h)
	if !ok {
		return StatusNotFound
	}
	isSub := obj.Kind() == registry.KindSubscription
	obj.Release()
	if !isSub {
		return StatusNotFound
	}
	if !g.reg.Release(h) {
		return StatusNotFound
	}
	return StatusOK
}

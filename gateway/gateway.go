package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/dispatch"
	"github.com/wippyai/wallet-bridge/errors"
	"github.com/wippyai/wallet-bridge/port"
	"github.com/wippyai/wallet-bridge/registry"
	"github.com/wippyai/wallet-bridge/supervisor"
)

// Gateway is the boundary surface. One instance owns a supervisor, a handle
// registry, and a sealed dispatch table; all entry points return
// immediately and deliver results through ports.
type Gateway struct {
	sup   *supervisor.Supervisor
	reg   *registry.Registry
	table *dispatch.Table

	nextRequest atomic.Uint64
	pending     sync.Map // request id -> *port.Completion
	inflight    atomic.Int64
}

// New assembles a gateway around a handle registry and a dispatch table.
// The registry comes from the caller because handlers that mint handles
// (see walletops) are bound to it before the gateway exists; nil means a
// fresh one. The table is sealed here; no methods can be added afterwards.
func New(cfg Config, reg *registry.Registry, table *dispatch.Table) *Gateway {
	table.Seal()
	if reg == nil {
		reg = registry.New()
	}
	g := &Gateway{
		sup: supervisor.New(supervisor.Config{
			Workers:       cfg.Workers,
			QueueDepth:    cfg.QueueDepth,
			ShutdownGrace: cfg.ShutdownGrace,
		}),
		reg:   reg,
		table: table,
	}
	g.reg.Subscribe(handleGaugeObserver{})
	return g
}

// Start brings up the executor. Idempotent; safe to call from every entry
// path on the foreign side.
func (g *Gateway) Start() error {
	if err := g.sup.EnsureStarted(); err != nil {
		return errors.RuntimeUnavailable(err.Error())
	}
	return nil
}

// Close tears the gateway down: stops the executor with its bounded grace,
// then releases every live handle. Called at most once, at process exit.
func (g *Gateway) Close() error {
	err := multierr.Append(g.sup.Shutdown(), g.reg.Close())
	Logger().Info("gateway closed", zap.Error(err))
	return err
}

// Registry exposes the handle table to collaborator handlers that mint new
// handles (e.g. create_gql_transport).
func (g *Gateway) Registry() *registry.Registry { return g.reg }

// Inflight reports the number of requests between acceptance and delivery.
func (g *Gateway) Inflight() int64 { return g.inflight.Load() }

// Dispatch routes one request/response call. It returns as soon as the
// operation is scheduled; the outcome arrives on p later, exactly once,
// even if the handler fails or panics.
func (g *Gateway) Dispatch(method string, argsJSON []byte, handle registry.Handle, p port.Port) Status {
	if p == nil {
		return StatusNoPort
	}

	id := g.nextRequest.Add(1)
	comp := port.NewCompletion(id, p)

	if !g.sup.Running() {
		comp.Reject(errors.RuntimeUnavailable("executor is not running"))
		metricDispatches.WithLabelValues(method, "RuntimeUnavailable").Inc()
		return StatusRuntimeUnavailable
	}

	handler, err := g.table.Lookup(method)
	if err != nil {
		comp.Reject(err)
		metricDispatches.WithLabelValues(method, "UnknownMethod").Inc()
		return StatusOK
	}

	g.pending.Store(id, comp)
	g.inflight.Add(1)
	start := time.Now()

	submitErr := g.sup.Submit(func(ctx context.Context) {
		outcome := g.run(ctx, handler, dispatch.Request{
			Method:  method,
			Payload: argsJSON,
			Handle:  handle,
		}, comp)
		g.settle(id)
		metricDispatches.WithLabelValues(method, outcome).Inc()
		metricDispatchSeconds.Observe(time.Since(start).Seconds())
	})
	if submitErr != nil {
		// Shutdown raced the running check; settle here instead.
		g.settle(id)
		comp.Reject(errors.RuntimeUnavailable(submitErr.Error()))
		metricDispatches.WithLabelValues(method, "RuntimeUnavailable").Inc()
		return StatusRuntimeUnavailable
	}
	return StatusOK
}

// run resolves the handle, invokes the handler under containment, and
// settles the completion. Registry state is untouched by failures: a
// failed dispatch only drops the reference it took. Returns the outcome
// label for metrics.
func (g *Gateway) run(ctx context.Context, handler dispatch.Handler, req dispatch.Request, comp *port.Completion) string {
	if req.Handle != 0 {
		obj, ok := g.reg.Lookup(req.Handle)
		if !ok {
			comp.Reject(errors.HandleNotFound(uint64(req.Handle)))
			return string(errors.KindHandleNotFound)
		}
		defer obj.Release()
		req.Object = obj
	}

	result, err := dispatch.Invoke(ctx, handler, req)
	if err != nil {
		comp.Reject(errors.Passthrough(errors.PhaseDispatch, err))
		return string(errors.KindOf(err))
	}
	comp.Resolve(result)
	return "ok"
}

func (g *Gateway) settle(id uint64) {
	g.pending.Delete(id)
	g.inflight.Add(-1)
}

// ReleaseHandle removes a handle from the registry. In-flight operations
// already holding the object run to completion; subscriptions observe
// cancellation through their object's destructor.
func (g *Gateway) ReleaseHandle(h registry.Handle) Status {
	if !g.reg.Release(h) {
		return StatusNotFound
	}
	return StatusOK
}

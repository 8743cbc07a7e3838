package gateway

// Status is the immediate return of a boundary entry point. It reports
// whether the request entered the delivery pipeline, not how it completed:
// any accepted request resolves later through its port, exactly once.
type Status int32

const (
	// StatusOK means the request was accepted; exactly one envelope (or,
	// for subscriptions, an event sequence with one terminal record) will
	// arrive on the supplied port.
	StatusOK Status = iota

	// StatusNoPort means no delivery target was supplied; nothing was
	// scheduled and nothing will arrive.
	StatusNoPort

	// StatusNotFound means the named handle does not exist. Returned only
	// by the synchronous entry points (release, unsubscribe).
	StatusNotFound

	// StatusRuntimeUnavailable means the supervisor is not running. The
	// terminal error envelope has already been posted to the port.
	StatusRuntimeUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoPort:
		return "no_port"
	case StatusNotFound:
		return "not_found"
	case StatusRuntimeUnavailable:
		return "runtime_unavailable"
	default:
		return "unknown"
	}
}

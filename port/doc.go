// Package port implements the callback delivery channel between gateway
// worker threads and the foreign runtime's event loop.
//
// Every cross-boundary completion is a message posted to a Port, never a
// direct callback from a worker thread into foreign code. Completion
// enforces exactly one terminal delivery per request; Stream delivers a
// subscription's events in production order followed by exactly one
// terminal record (cancelled or errored). Delivery failures are logged
// no-ops: a dead port must never take the gateway down with it.
package port

// Package gateway is the boundary surface of the bridge.
//
// Entry points mirror the foreign-side contract: Dispatch and Subscribe
// return immediately with a Status; results and events arrive later on the
// supplied ports, from supervisor worker threads, as serialized envelopes.
// The foreign host's event loop is the only place its callbacks execute.
//
// Control flow per request:
//
//	Dispatch -> method lookup -> schedule on executor -> (suspend)
//	  -> resolve handle -> invoke handler under containment
//	  -> encode envelope -> post to completion port
//
// The gateway guarantees exactly one terminal outcome per request and, for
// subscriptions, in-order events followed by exactly one terminal record.
// No failure on any path crosses the boundary as anything but a
// well-formed error envelope.
package gateway

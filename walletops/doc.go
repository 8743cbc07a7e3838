// Package walletops supplies the dispatch table's contents: the wallet
// engine's operations, bound to handlers in the shape the gateway core
// expects.
//
// The gateway core treats this set as configuration. Adding an engine
// operation means adding a handler here and nothing else; the lifecycle,
// containment, and delivery machinery is method-agnostic.
package walletops

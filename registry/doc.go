// Package registry provides the process-wide handle table mapping opaque
// 64-bit handles to type-erased, reference-counted native objects.
//
// # Handle Lifecycle
//
//	h := reg.Register(registry.KindWallet, w)
//
//	obj, ok := reg.Lookup(h)   // takes a reference
//	defer obj.Release()        // drop it when the operation completes
//
//	reg.Release(h)             // handle gone; object lives until last ref drops
//
// Handles are allocated monotonically and never reused. A released handle
// fails every later Lookup; it can never resolve to a different object.
//
// # Ownership
//
// The registry holds one strong reference per entry. Lookup takes another
// for the duration of an in-flight operation, so releasing a handle while
// an operation runs defers destruction rather than racing it. Values that
// implement Destroyer are finalized exactly once, on the last release.
//
// Registry operations are short critical sections over sharded maps; they
// never execute handler or collaborator logic.
package registry

// Package supervisor owns the process-wide task executor serving all
// dispatched operations.
//
// The executor is a fixed pool of workers sized to available cores by
// default. It is created lazily by EnsureStarted, which is idempotent, and
// torn down exactly once by Shutdown, which drains in-flight work within a
// bounded grace period. A stopped supervisor never restarts; callers observe
// ErrStopped and surface it as a RuntimeUnavailable envelope.
//
// Submit never blocks the caller: the foreign side's event loop must not
// stall on a full queue, so overflow tasks run on dedicated goroutines.
// Detach exists for collaborator calls that block synchronously, keeping
// them off pool workers entirely.
package supervisor

// Package dispatch maps method names to operation handlers.
//
// The table is assembled at process start, sealed, and never mutated again;
// the collaborator supplies its contents (see walletops). Lookup misses
// surface as UnknownMethod. Invoke wraps every handler call so a panic
// becomes an InternalError response instead of a process abort.
package dispatch

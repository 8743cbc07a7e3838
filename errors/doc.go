// Package errors provides the structured error types used on every gateway
// code path.
//
// Every error carries a Phase (where in the pipeline it occurred) and a Kind
// (the stable wire value delivered across the boundary in error envelopes).
// No raw error ever crosses the boundary: the dispatch pipeline converts
// anything it catches, panics included, into one of these before delivery.
//
//	err := errors.UnknownMethod("get_balanec")
//	errors.KindOf(err) // "UnknownMethod"
//
// Kinds are part of the wire contract and must not be renamed.
package errors

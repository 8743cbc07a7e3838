// Package envelope implements the request/response envelope protocol
// crossing the boundary.
//
// Requests arrive as a method name plus an opaque JSON payload; the payload
// is decoded into the handler's argument shape only after the dispatch table
// resolves the method, and strictly (unknown fields are rejected). Responses
// are either an ok envelope with a serialized payload or an err envelope
// with a structured {kind, message} body. Exactly one response envelope
// exists per request; subscription events reuse the same record shape.
//
// # Numeric Encoding
//
// The foreign host's native number type is an IEEE double. Any field that
// can exceed 2^53-1 is declared as envelope.BigInt or envelope.Uint64 and
// travels as a decimal string in both directions, bit-exact.
package envelope

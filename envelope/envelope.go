package envelope

import (
	"bytes"
	"encoding/json"

	"github.com/wippyai/wallet-bridge/errors"
)

// Request is the decoded form of a serialized request arriving from the
// foreign side. Payload stays opaque until the dispatch table knows which
// argument shape the handler expects.
type Request struct {
	Method  string          `json:"method"`
	Handle  uint64          `json:"handle,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outcome values for response envelopes.
const (
	OutcomeOK  = "ok"
	OutcomeErr = "err"
)

// ErrorBody is the structured error carried by a failure envelope.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response is the single terminal envelope delivered per request, or one
// streamed event record for subscriptions.
type Response struct {
	RequestID uint64          `json:"request_id"`
	Outcome   string          `json:"outcome"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     *ErrorBody      `json:"error,omitempty"`
}

// DecodeArgs deserializes a request payload into the handler's argument
// shape. Unknown fields and malformed JSON both yield InvalidArgument with
// the method name and a diagnostic; the registry is never touched on this
// path. An empty payload decodes as no arguments.
func DecodeArgs(method string, payload []byte, into any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return errors.InvalidArgument(method, "malformed payload", err)
	}
	return nil
}

// Success builds an ok envelope, serializing the handler's result value.
func Success(requestID uint64, value any) (Response, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Response{}, errors.EncodeFailed("", err)
	}
	return Response{
		RequestID: requestID,
		Outcome:   OutcomeOK,
		Payload:   payload,
	}, nil
}

// Failure builds an err envelope from any error, preserving structured
// kinds and flattening everything else to InternalError.
func Failure(requestID uint64, err error) Response {
	body := &ErrorBody{
		Kind:    string(errors.KindOf(err)),
		Message: err.Error(),
	}
	if e, ok := err.(*errors.Error); ok {
		body.Message = e.Message()
	}
	return Response{
		RequestID: requestID,
		Outcome:   OutcomeErr,
		Error:     body,
	}
}

// Encode serializes a response envelope for delivery.
func Encode(r Response) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, errors.EncodeFailed("", err)
	}
	return raw, nil
}

package port

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/envelope"
	gwerrors "github.com/wippyai/wallet-bridge/errors"
)

// Completion correlates one in-flight request with its completion port and
// enforces exactly-one-delivery. After the first Resolve or Reject every
// later call is a no-op.
type Completion struct {
	requestID uint64
	port      Port
	once      sync.Once
}

func NewCompletion(requestID uint64, p Port) *Completion {
	return &Completion{requestID: requestID, port: p}
}

// RequestID returns the gateway-assigned correlation id.
func (c *Completion) RequestID() uint64 { return c.requestID }

// Resolve delivers a success envelope carrying value.
func (c *Completion) Resolve(value any) {
	c.once.Do(func() {
		resp, err := envelope.Success(c.requestID, value)
		if err != nil {
			resp = envelope.Failure(c.requestID, err)
		}
		c.post(resp)
	})
}

// Reject delivers a failure envelope for err.
func (c *Completion) Reject(err error) {
	c.once.Do(func() {
		c.post(envelope.Failure(c.requestID, err))
	})
}

// A failed delivery is a no-op failure: logged, never fatal. The request
// is still considered completed so no second attempt is made.
func (c *Completion) post(resp envelope.Response) {
	raw, err := envelope.Encode(resp)
	if err != nil {
		Logger().Error("encode completion",
			zap.Uint64("request_id", c.requestID),
			zap.Error(err))
		return
	}
	if c.port == nil {
		Logger().Warn("completion dropped, no port registered",
			zap.Uint64("request_id", c.requestID))
		return
	}
	if err := c.port.Post(raw); err != nil {
		Logger().Warn("completion delivery failed",
			zap.Uint64("request_id", c.requestID),
			zap.String("outcome", resp.Outcome),
			zap.Error(err))
	}
}

// Stream delivers a subscription's event sequence to its event port.
//
// State machine: Active, then zero or more event deliveries, then exactly
// one terminal delivery (cancelled or errored). Emit after the terminal
// state is a no-op. Emit is called only from the subscription's pump
// goroutine, which preserves production order end to end.
type Stream struct {
	subID uint64
	port  Port
	mu    sync.Mutex
	done  bool
}

func NewStream(subID uint64, p Port) *Stream {
	return &Stream{subID: subID, port: p}
}

// Emit delivers one non-terminal event record.
func (s *Stream) Emit(value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	resp, err := envelope.Success(s.subID, value)
	if err != nil {
		Logger().Error("encode event", zap.Uint64("subscription", s.subID), zap.Error(err))
		return
	}
	s.post(resp)
}

// Cancelled delivers the terminal cancellation record.
func (s *Stream) Cancelled() {
	s.terminate(gwerrors.Cancelled(s.subID))
}

// Errored delivers the terminal upstream-failure record.
func (s *Stream) Errored(err error) {
	s.terminate(gwerrors.Passthrough(gwerrors.PhaseDeliver, err))
}

// Done reports whether a terminal record was delivered.
func (s *Stream) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Stream) terminate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	s.post(envelope.Failure(s.subID, err))
}

func (s *Stream) post(resp envelope.Response) {
	raw, err := envelope.Encode(resp)
	if err != nil {
		Logger().Error("encode stream record", zap.Uint64("subscription", s.subID), zap.Error(err))
		return
	}
	if err := s.port.Post(raw); err != nil {
		Logger().Warn("event delivery failed",
			zap.Uint64("subscription", s.subID),
			zap.Error(err))
	}
}

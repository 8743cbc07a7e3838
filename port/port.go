package port

import (
	"errors"
	"sync"
)

// Port is a foreign-runtime callback target. Post enqueues one serialized
// delivery; it must be safe for concurrent enqueue from any worker thread.
// The foreign host is the single consumer and runs the actual callback on
// its own event loop, so gateway threads never execute foreign code.
type Port interface {
	Post(raw []byte) error
}

var ErrPortClosed = errors.New("port closed")

// ChanPort is the standard channel-backed port. The foreign-side adapter
// drains C on its event loop; the gateway posts from worker threads.
type ChanPort struct {
	c      chan []byte
	mu     sync.Mutex
	closed bool
}

// NewChanPort creates a port with the given enqueue buffer.
func NewChanPort(buffer int) *ChanPort {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChanPort{c: make(chan []byte, buffer)}
}

// C returns the consumer side.
func (p *ChanPort) C() <-chan []byte { return p.c }

// Post enqueues a delivery. It never blocks: a full buffer means the
// consumer stopped draining, which is reported as a closed port.
func (p *ChanPort) Post(raw []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}
	select {
	case p.c <- raw:
		return nil
	default:
		return errors.New("port buffer full")
	}
}

// Close stops the port. Pending deliveries already enqueued remain
// readable; later posts fail with ErrPortClosed.
func (p *ChanPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.c)
}

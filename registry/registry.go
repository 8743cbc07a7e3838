package registry

import (
	"sync"
	"sync/atomic"
)

// Handle is an opaque reference to a native object.
// Handle 0 is reserved and always invalid. Handles are allocated
// monotonically and never reused, so a stale handle can only miss, never
// alias a newer object.
type Handle uint64

const shardCount = 64

// EventType for handle lifecycle notifications.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReleased
)

// Event records a handle lifecycle transition.
type Event struct {
	Type   EventType
	Handle Handle
	Kind   Kind
}

// Observer receives handle lifecycle events. Observers run inline under no
// shard lock and must not call back into the registry synchronously.
type Observer interface {
	OnHandleEvent(Event)
}

type shard struct {
	mu      sync.RWMutex
	entries map[Handle]*Object
}

// Registry maps opaque handles to reference-counted native objects. It is
// the only gateway structure mutated concurrently by arbitrary worker
// threads; entries are sharded by handle so lookups for unrelated requests
// never serialize on each other.
type Registry struct {
	shards    [shardCount]shard
	next      atomic.Uint64
	observers []Observer
	obsMu     sync.RWMutex
	closed    atomic.Bool
}

func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].entries = make(map[Handle]*Object)
	}
	return r
}

func (r *Registry) shardFor(h Handle) *shard {
	return &r.shards[uint64(h)%shardCount]
}

// Register stores a value and returns its handle.
func (r *Registry) Register(kind Kind, value any) Handle {
	if r.closed.Load() {
		return 0
	}

	h := Handle(r.next.Add(1))
	obj := newObject(kind, value)

	s := r.shardFor(h)
	s.mu.Lock()
	s.entries[h] = obj
	s.mu.Unlock()

	r.notify(Event{Type: EventRegistered, Handle: h, Kind: kind})
	return h
}

// Lookup resolves a handle to its object, taking a reference the caller
// must drop with Object.Release when the operation finishes. The extra
// reference keeps the object alive even if the handle is released while
// the operation is still in flight.
func (r *Registry) Lookup(h Handle) (*Object, bool) {
	if h == 0 {
		return nil, false
	}

	s := r.shardFor(h)
	s.mu.RLock()
	obj, ok := s.entries[h]
	if ok {
		obj.retain()
	}
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return obj, true
}

// Release removes a handle and drops the registry's reference. The object
// itself is destroyed only when every in-flight operation has dropped its
// reference too. Returns false if the handle was never registered or was
// already released.
func (r *Registry) Release(h Handle) bool {
	if h == 0 {
		return false
	}

	s := r.shardFor(h)
	s.mu.Lock()
	obj, ok := s.entries[h]
	if ok {
		delete(s.entries, h)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	kind := obj.kind
	obj.Release()
	r.notify(Event{Type: EventReleased, Handle: h, Kind: kind})
	return true
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Each iterates over live handles. The callback runs without shard locks
// held; entries registered or released during iteration may be missed.
func (r *Registry) Each(fn func(Handle, *Object) bool) {
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		handles := make([]Handle, 0, len(s.entries))
		objs := make([]*Object, 0, len(s.entries))
		for h, o := range s.entries {
			handles = append(handles, h)
			objs = append(objs, o)
		}
		s.mu.RUnlock()
		for j, h := range handles {
			if !fn(h, objs[j]) {
				return
			}
		}
	}
}

// Subscribe adds an observer for handle lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close releases every live handle and stops accepting registrations.
func (r *Registry) Close() error {
	r.closed.Store(true)

	var all []Handle
	r.Each(func(h Handle, _ *Object) bool {
		all = append(all, h)
		return true
	})
	for _, h := range all {
		r.Release(h)
	}
	return nil
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}

package registry

import (
	"sync"
	"sync/atomic"
	"testing"
)

type destroyable struct {
	destroyed atomic.Int32
}

func (d *destroyable) Destroy() { d.destroyed.Add(1) }

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnHandleEvent(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func TestRegistry_RegisterLookupRelease(t *testing.T) {
	r := New()

	h := r.Register(KindWallet, "wallet-a")
	if h == 0 {
		t.Fatal("expected non-zero handle")
	}

	obj, ok := r.Lookup(h)
	if !ok {
		t.Fatal("lookup failed")
	}
	if obj.Kind() != KindWallet {
		t.Fatalf("kind = %v, want wallet", obj.Kind())
	}
	if obj.Value() != "wallet-a" {
		t.Fatalf("value = %v", obj.Value())
	}
	obj.Release()

	if !r.Release(h) {
		t.Fatal("release failed")
	}
	if _, ok := r.Lookup(h); ok {
		t.Fatal("lookup after release should miss")
	}
	if r.Release(h) {
		t.Fatal("double release should report not found")
	}
}

func TestRegistry_HandlesNeverReused(t *testing.T) {
	r := New()
	seen := make(map[Handle]bool)
	for i := 0; i < 1000; i++ {
		h := r.Register(KindTransport, i)
		if seen[h] {
			t.Fatalf("handle %d reused", h)
		}
		seen[h] = true
		r.Release(h)
	}
}

func TestRegistry_ZeroHandleInvalid(t *testing.T) {
	r := New()
	if _, ok := r.Lookup(0); ok {
		t.Fatal("handle 0 must never resolve")
	}
	if r.Release(0) {
		t.Fatal("handle 0 must not release")
	}
}

func TestRegistry_DestructionDeferredToLastRef(t *testing.T) {
	r := New()
	d := &destroyable{}

	h := r.Register(KindWallet, d)
	obj, ok := r.Lookup(h)
	if !ok {
		t.Fatal("lookup failed")
	}

	// Handle released while an operation still holds a reference.
	if !r.Release(h) {
		t.Fatal("release failed")
	}
	if d.destroyed.Load() != 0 {
		t.Fatal("destroyed while a reference was outstanding")
	}

	obj.Release()
	if d.destroyed.Load() != 1 {
		t.Fatalf("destroyed %d times, want exactly once", d.destroyed.Load())
	}
}

func TestRegistry_DestroyedOnceWithoutLookups(t *testing.T) {
	r := New()
	d := &destroyable{}
	h := r.Register(KindSubscription, d)
	r.Release(h)
	if d.destroyed.Load() != 1 {
		t.Fatalf("destroyed %d times, want 1", d.destroyed.Load())
	}
}

func TestRegistry_Observer(t *testing.T) {
	r := New()
	obs := &recordingObserver{}
	r.Subscribe(obs)

	h := r.Register(KindWallet, "w")
	r.Release(h)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.events) != 2 {
		t.Fatalf("got %d events, want 2", len(obs.events))
	}
	if obs.events[0].Type != EventRegistered || obs.events[0].Handle != h {
		t.Fatalf("event 0 = %+v", obs.events[0])
	}
	if obs.events[1].Type != EventReleased || obs.events[1].Kind != KindWallet {
		t.Fatalf("event 1 = %+v", obs.events[1])
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	const goroutines = 16
	const perG = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				h := r.Register(KindTransport, i)
				if obj, ok := r.Lookup(h); ok {
					obj.Release()
				}
				r.Release(h)
			}
		}()
	}
	wg.Wait()

	if n := r.Len(); n != 0 {
		t.Fatalf("leaked %d handles", n)
	}
}

func TestRegistry_Close(t *testing.T) {
	r := New()
	d := &destroyable{}
	r.Register(KindWallet, d)
	r.Register(KindTransport, "t")

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 0 {
		t.Fatal("entries survived close")
	}
	if d.destroyed.Load() != 1 {
		t.Fatal("close did not finalize values")
	}
	if h := r.Register(KindWallet, "late"); h != 0 {
		t.Fatal("register after close should fail")
	}
}

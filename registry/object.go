package registry

import "sync/atomic"

// Kind identifies which variant of native object a handle refers to.
// The set is closed: handlers match on the variant they expect and fail
// with a type mismatch otherwise.
type Kind uint8

const (
	KindWallet Kind = iota + 1
	KindTransport
	KindSubscription
)

func (k Kind) String() string {
	switch k {
	case KindWallet:
		return "wallet"
	case KindTransport:
		return "transport"
	case KindSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}

// Destroyer is optionally implemented by native values that need cleanup
// when their last reference drops.
type Destroyer interface {
	Destroy()
}

// Object is a type-erased, reference-counted native value behind a handle.
// The registry holds one reference; every Lookup takes another. The value
// is destroyed when the count reaches zero, never at registry removal.
type Object struct {
	value any
	kind  Kind
	refs  atomic.Int64
}

func newObject(kind Kind, value any) *Object {
	o := &Object{value: value, kind: kind}
	o.refs.Store(1) // registry's reference
	return o
}

// Kind returns the object's variant tag.
func (o *Object) Kind() Kind { return o.kind }

// Value returns the stored native value.
func (o *Object) Value() any { return o.value }

func (o *Object) retain() {
	o.refs.Add(1)
}

// Release drops one reference. The final release runs the value's
// destructor; values without one but with a Close method are closed
// instead, which is how transports release their connections.
func (o *Object) Release() {
	if o.refs.Add(-1) != 0 {
		return
	}
	switch v := o.value.(type) {
	case Destroyer:
		v.Destroy()
	case interface{ Close() error }:
		v.Close()
	}
}

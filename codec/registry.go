package codec

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry holds codecs keyed by subject type.
//
// Lookup returns the first registered codec whose subject the requested
// type is assignable to. Registration order decides, not specificity: a
// codec for an interface registered before a codec for a concrete type
// implementing it shadows the latter.
type Registry struct {
	mu     sync.RWMutex
	codecs []Codec
}

// NewRegistry returns a registry holding codecs in the given order.
// Invalid codecs are reported through Register's error; use MustRegistry
// in package initialisation.
func NewRegistry(codecs ...Codec) (*Registry, error) {
	r := &Registry{}
	for _, c := range codecs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on an invalid codec.
func MustRegistry(codecs ...Codec) *Registry {
	r, err := NewRegistry(codecs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends c.
func (r *Registry) Register(c Codec) error {
	if c == nil {
		return fmt.Errorf("%w: nil codec", ErrInvalidCodec)
	}
	if c.Subject() == nil {
		return fmt.Errorf("%w: %T has no subject type", ErrInvalidCodec, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs = append(r.codecs, c)
	return nil
}

// Lookup returns the first codec whose subject typ is assignable to.
func (r *Registry) Lookup(typ reflect.Type) (Codec, bool) {
	if r == nil || typ == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.codecs {
		if typ.AssignableTo(c.Subject()) {
			return c, true
		}
	}
	return nil, false
}

// Codecs returns a snapshot of the registered codecs in lookup order.
func (r *Registry) Codecs() []Codec {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Codec, len(r.codecs))
	copy(res, r.codecs)
	return res
}

// Len returns the number of registered codecs.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codecs)
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{codecs: r.Codecs()}
}

// Merge returns a new registry consulting local before global, so local
// codecs win when both can serve a type. Either argument may be nil.
func Merge(local, global *Registry) *Registry {
	if local.Len() == 0 && global != nil {
		return global
	}
	if global.Len() == 0 && local != nil {
		return local
	}
	res := &Registry{}
	res.codecs = append(res.codecs, local.Codecs()...)
	res.codecs = append(res.codecs, global.Codecs()...)
	return res
}

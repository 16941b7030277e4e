package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/signadot/confmap/ir"
)

var (
	// ErrInvalidCodec is returned when registering a nil codec or a codec
	// without a subject type.
	ErrInvalidCodec = errors.New("invalid codec")

	// ErrInvalid is wrapped by leaf codecs when a node does not have the
	// shape they decode.
	ErrInvalid = errors.New("invalid encoded value")
)

// Codec converts values of one Go type to and from encoded trees.
//
// Encode receives a value assignable to Subject(). Decode returns a value
// assignable to Subject(). Implementations must be safe for concurrent
// use.
type Codec interface {
	Subject() reflect.Type
	Encode(v any) (*ir.Node, error)
	Decode(n *ir.Node) (any, error)
}

// Of builds a Codec for T from a pair of functions.
func Of[T any](enc func(T) (*ir.Node, error), dec func(*ir.Node) (T, error)) Codec {
	return &funcCodec[T]{enc: enc, dec: dec}
}

type funcCodec[T any] struct {
	enc func(T) (*ir.Node, error)
	dec func(*ir.Node) (T, error)
}

func (c *funcCodec[T]) Subject() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *funcCodec[T]) Encode(v any) (*ir.Node, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("%w: codec for %s got %T", ErrInvalid, c.Subject(), v)
	}
	return c.enc(t)
}

func (c *funcCodec[T]) Decode(n *ir.Node) (any, error) {
	t, err := c.dec(n)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func describe(n *ir.Node) string {
	if n == nil {
		return "nothing"
	}
	return n.Type.String()
}

package codec

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"

	"github.com/signadot/confmap/ir"
)

// Text returns a codec encoding T as a string through its
// encoding.TextMarshaler and decoding through *T's
// encoding.TextUnmarshaler.
//
//	c := codec.Text[netip.Addr]()
func Text[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}]() Codec {
	return &textCodec[T, PT]{}
}

type textCodec[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}] struct{}

func (c *textCodec[T, PT]) Subject() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *textCodec[T, PT]) Encode(v any) (*ir.Node, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("%w: text codec for %s got %T", ErrInvalid, c.Subject(), v)
	}
	var tm encoding.TextMarshaler
	if m, ok := any(t).(encoding.TextMarshaler); ok {
		tm = m
	} else if m, ok := any(&t).(encoding.TextMarshaler); ok {
		tm = m
	} else {
		return nil, fmt.Errorf("%w: %s does not implement encoding.TextMarshaler", ErrInvalidCodec, c.Subject())
	}
	text, err := tm.MarshalText()
	if err != nil {
		return nil, err
	}
	return ir.FromString(string(text)), nil
}

func (c *textCodec[T, PT]) Decode(n *ir.Node) (any, error) {
	if n == nil || n.Type != ir.StringType {
		return nil, fmt.Errorf("%w: %s expects a String, got %s", ErrInvalid, c.Subject(), describe(n))
	}
	var t T
	if err := PT(&t).UnmarshalText([]byte(n.String)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, c.Subject(), err)
	}
	return t, nil
}

// URL encodes *url.URL values as their string form.
func URL() Codec {
	return Of(
		func(u *url.URL) (*ir.Node, error) {
			if u == nil {
				return ir.Null(), nil
			}
			return ir.FromString(u.String()), nil
		},
		func(n *ir.Node) (*url.URL, error) {
			if n == nil || n.Type != ir.StringType {
				return nil, fmt.Errorf("%w: url expects a String, got %s", ErrInvalid, describe(n))
			}
			u, err := url.Parse(n.String)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
			}
			return u, nil
		},
	)
}

package gomap

import (
	"log/slog"
	"reflect"

	"github.com/signadot/confmap/codec"
)

// Option configures a Mapper at construction.
type Option interface {
	applyMapper(*mapperConfig)
}

// ConstructorOption configures the registration of one designated
// constructor.
type ConstructorOption interface {
	applyConstructor(*ctorConfig)
}

// mapperConfig holds everything NewMapper needs.
type mapperConfig struct {
	codecs *codec.Registry
	ctors  []ctorConfig
	tagKey string
	log    *slog.Logger
}

// ctorConfig describes one pending constructor registration.
type ctorConfig struct {
	// fn is the constructor function, or invalid for a field-wise
	// constructor of record.
	fn     reflect.Value
	record reflect.Type

	local  []codec.Codec
	codecs map[string]codec.Codec
	hints  map[string]reflect.Type
	// order keeps FieldCodec/FieldHint names in the order they were
	// given so registration errors are deterministic.
	order []string
}

func newMapperConfig() *mapperConfig {
	return &mapperConfig{
		tagKey: DefaultTagKey,
		log:    slog.New(slog.DiscardHandler),
	}
}

type mapperOption func(*mapperConfig)

func (f mapperOption) applyMapper(c *mapperConfig) { f(c) }

type constructorOption func(*ctorConfig)

func (f constructorOption) applyConstructor(c *ctorConfig) { f(c) }

// WithCodecs sets the codecs the mapper consults for types it cannot map
// structurally. The registry is copied; later registrations on reg do not
// affect the mapper.
func WithCodecs(reg *codec.Registry) Option {
	return mapperOption(func(c *mapperConfig) {
		c.codecs = reg.Clone()
	})
}

// WithConstructor registers fn as the designated constructor of the
// record type it returns.
//
// fn must be a non-variadic function returning R or (R, error), where R
// is a struct or a pointer to a struct. Its parameters bind, in order, to
// the fields of R as Mapper.Fields reports them.
func WithConstructor(fn any, opts ...ConstructorOption) Option {
	return mapperOption(func(c *mapperConfig) {
		cc := ctorConfig{fn: reflect.ValueOf(fn)}
		for _, o := range opts {
			o.applyConstructor(&cc)
		}
		c.ctors = append(c.ctors, cc)
	})
}

// WithRecord registers a field-wise designated constructor for T: decoded
// field values are assigned directly, unexported fields included.
func WithRecord[T any](opts ...ConstructorOption) Option {
	return mapperOption(func(c *mapperConfig) {
		cc := ctorConfig{record: reflect.TypeFor[T]()}
		for _, o := range opts {
			o.applyConstructor(&cc)
		}
		c.ctors = append(c.ctors, cc)
	})
}

// WithTagKey sets the struct tag key holding field options. The default
// is DefaultTagKey.
func WithTagKey(key string) Option {
	return mapperOption(func(c *mapperConfig) {
		c.tagKey = key
	})
}

// WithLogger sets the logger for registration and codec fallback
// diagnostics. Nothing is logged above Debug.
func WithLogger(l *slog.Logger) Option {
	return mapperOption(func(c *mapperConfig) {
		if l != nil {
			c.log = l
		}
	})
}

// LocalCodecs declares codecs used for the record and everything nested
// in it, ahead of the mapper's codecs.
func LocalCodecs(codecs ...codec.Codec) ConstructorOption {
	return constructorOption(func(c *ctorConfig) {
		c.local = append(c.local, codecs...)
	})
}

// FieldCodec binds an explicit codec to the named field. The name is
// matched against the Go field name, then the encoded key. For a slice,
// array or map field the codec may target the element type, in which case
// it applies to each element.
func FieldCodec(name string, cd codec.Codec) ConstructorOption {
	return constructorOption(func(c *ctorConfig) {
		if c.codecs == nil {
			c.codecs = map[string]codec.Codec{}
		}
		c.codecs[name] = cd
		c.order = append(c.order, name)
	})
}

// FieldHint names the concrete type to build for the named field when
// its declared type (or element type) is an interface.
func FieldHint(name string, t reflect.Type) ConstructorOption {
	return constructorOption(func(c *ctorConfig) {
		if c.hints == nil {
			c.hints = map[string]reflect.Type{}
		}
		c.hints[name] = t
		c.order = append(c.order, name)
	})
}

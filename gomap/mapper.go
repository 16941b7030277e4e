package gomap

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/signadot/confmap/codec"
	"github.com/signadot/confmap/ir"
)

// Mapper maps records to and from encoded trees.
//
// A Mapper is immutable once NewMapper returns and is safe for concurrent
// use, provided the codecs it was given are.
type Mapper struct {
	codecs *codec.Registry
	ctors  map[reflect.Type]*Constructor
	tagKey string
	log    *slog.Logger

	// fields caches descriptors of struct types without a constructor.
	fields sync.Map // reflect.Type -> []FieldDescriptor
}

// NewMapper creates a Mapper. Without WithCodecs it uses a fresh
// codec.Standard registry.
//
// Registering two constructors for one record type fails with
// ErrAmbiguousConstructor.
func NewMapper(opts ...Option) (*Mapper, error) {
	cfg := newMapperConfig()
	for _, opt := range opts {
		opt.applyMapper(cfg)
	}
	if cfg.codecs == nil {
		cfg.codecs = codec.Standard()
	}
	m := &Mapper{
		codecs: cfg.codecs,
		ctors:  make(map[reflect.Type]*Constructor, len(cfg.ctors)),
		tagKey: cfg.tagKey,
		log:    cfg.log,
	}
	for i := range cfg.ctors {
		ctor, err := m.newConstructor(&cfg.ctors[i])
		if err != nil {
			return nil, err
		}
		if prev, ok := m.ctors[ctor.Type]; ok {
			return nil, fmt.Errorf("%w for %s: %s and %s",
				ErrAmbiguousConstructor, ctor.Type, prev, ctor)
		}
		m.ctors[ctor.Type] = ctor
		m.log.Debug("registered constructor",
			"type", ctor.Type.String(),
			"constructor", ctor.String(),
			"fields", len(ctor.Fields))
	}
	return m, nil
}

// MustMapper is like NewMapper but panics on error.
func MustMapper(opts ...Option) *Mapper {
	m, err := NewMapper(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Codecs returns a copy of the mapper's codec registry.
func (m *Mapper) Codecs() *codec.Registry {
	return m.codecs.Clone()
}

// Locate returns the designated constructor of the record type t, a
// struct or pointer to struct.
func (m *Mapper) Locate(t reflect.Type) (*Constructor, error) {
	if ctor, ok := m.lookupCtor(t); ok {
		return ctor, nil
	}
	return nil, fmt.Errorf("%w for %s", ErrNoDesignatedConstructor, typeName(t))
}

func (m *Mapper) lookupCtor(t reflect.Type) (*Constructor, bool) {
	rt, ok := recordType(t)
	if !ok {
		return nil, false
	}
	ctor, ok := m.ctors[rt]
	return ctor, ok
}

// layout returns the descriptors and local codecs used to map struct
// type rt.
func (m *Mapper) layout(rt reflect.Type) ([]FieldDescriptor, *codec.Registry, error) {
	if ctor, ok := m.ctors[rt]; ok {
		return ctor.Fields, ctor.Local, nil
	}
	fds, err := m.resolve(rt)
	return fds, nil, err
}

// Codec returns a codec for the record type t that serializes and
// deserializes through m. It can be registered with other mappers or
// bound to fields with FieldCodec.
func (m *Mapper) Codec(t reflect.Type) (codec.Codec, error) {
	if _, err := m.Locate(t); err != nil {
		return nil, err
	}
	return &structural{m: m, typ: t}, nil
}

type structural struct {
	m   *Mapper
	typ reflect.Type
}

func (c *structural) Subject() reflect.Type {
	return c.typ
}

func (c *structural) Encode(v any) (*ir.Node, error) {
	return c.m.Serialize(v)
}

func (c *structural) Decode(n *ir.Node) (any, error) {
	return c.m.Deserialize(n, c.typ)
}

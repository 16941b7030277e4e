package gomap

import (
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/signadot/confmap/codec"
	"github.com/signadot/confmap/ir"
)

// binding is the explicit codec and hint of a field, carried down to its
// elements.
type binding struct {
	codec codec.Codec
	hint  reflect.Type
}

// visit identifies a referenced value on the current encoding path.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

// encState carries one Serialize or Encode call.
type encState struct {
	m       *Mapper
	codecs  *codec.Registry
	visited map[visit]string
}

func (m *Mapper) newEncState() *encState {
	return &encState{m: m, codecs: m.codecs, visited: map[visit]string{}}
}

func (s *encState) withLocal(local *codec.Registry) *encState {
	if local.Len() == 0 {
		return s
	}
	res := *s
	res.codecs = codec.Merge(local, s.codecs)
	return &res
}

// Serialize encodes the record v, a struct or pointer to struct, as an
// object node keyed by the effective field names.
//
// Records without a designated constructor are serialized by their
// resolved fields.
func (m *Mapper) Serialize(v any) (*ir.Node, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil()) {
		return nil, &MarshalError{Err: ErrNullValue}
	}
	rt, ok := recordType(rv.Type())
	if !ok {
		return nil, &MarshalError{Err: &TypeError{Expected: "struct", Actual: rv.Type().String()}}
	}
	s := m.newEncState()
	if rv.Kind() == reflect.Ptr {
		leave, err := s.enter(rv, "")
		if err != nil {
			return nil, err
		}
		defer leave()
		rv = rv.Elem()
	}
	return s.record(rv, rt, "")
}

// Encode encodes any value: leaves, collections, records and values a
// codec handles. A top-level struct that neither a constructor nor a
// codec claims is serialized field-wise.
func (m *Mapper) Encode(v any) (*ir.Node, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (isNullableType(rv.Type()) && rv.IsNil()) {
		return nil, &MarshalError{Err: ErrNullValue}
	}
	if rt, ok := recordType(rv.Type()); ok && !m.claimed(rv.Type()) {
		m.log.Debug("serializing unregistered struct by fields", "type", rt.String())
		return m.Serialize(v)
	}
	return m.newEncState().value(rv, "", binding{})
}

// claimed reports whether a constructor or codec handles values of t.
func (m *Mapper) claimed(t reflect.Type) bool {
	if _, ok := m.lookupCtor(t); ok {
		return true
	}
	if _, ok := m.codecs.Lookup(t); ok {
		return true
	}
	if t.Kind() == reflect.Ptr {
		_, ok := m.codecs.Lookup(t.Elem())
		return ok
	}
	return false
}

// enter marks the value referenced by v as being encoded at path. The
// returned func unmarks it.
func (s *encState) enter(v reflect.Value, path string) (func(), error) {
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if prev, seen := s.visited[key]; seen {
		return nil, &MarshalError{
			FieldPath: path,
			Message:   fmt.Sprintf("circular reference detected: %s -> %s (previously seen at %s)", rootName(prev), rootName(path), rootName(prev)),
			Err:       ErrCircularReference,
		}
	}
	s.visited[key] = path
	return func() { delete(s.visited, key) }, nil
}

func rootName(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

// record encodes the struct value v of type rt.
func (s *encState) record(v reflect.Value, rt reflect.Type, path string) (*ir.Node, error) {
	fds, local, err := s.m.layout(rt)
	if err != nil {
		return nil, &MarshalError{FieldPath: path, Err: err}
	}
	s = s.withLocal(local)
	v = addressable(v)
	res := ir.NewObject()
	for i := range fds {
		f := &fds[i]
		fpath := ir.AppendField(path, f.Key)
		n, err := s.value(readField(v, f), fpath, binding{codec: f.Codec, hint: f.Hint})
		if err != nil {
			return nil, err
		}
		res.Set(f.Key, n)
	}
	return res, nil
}

// value encodes v, checking in order: null, leaf kinds, the bound codec,
// records with a constructor, registry codecs, then collections and
// pointers.
func (s *encState) value(v reflect.Value, path string, b binding) (*ir.Node, error) {
	if !v.IsValid() {
		return ir.Null(), nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ir.Null(), nil
		}
		v = v.Elem()
	}
	typ := v.Type()
	if isNullableType(typ) && v.IsNil() {
		return ir.Null(), nil
	}
	if isLeafKind(typ) {
		return leafNode(v, path)
	}
	if b.codec != nil && typ.AssignableTo(b.codec.Subject()) {
		return s.viaCodec(b.codec, v, path)
	}
	if elemCodec(typ, b.codec) {
		return s.pointee(v, path, b)
	}
	if ctor, ok := s.m.lookupCtor(typ); ok {
		if typ.Kind() == reflect.Ptr {
			leave, err := s.enter(v, path)
			if err != nil {
				return nil, err
			}
			defer leave()
			v = v.Elem()
		}
		return s.record(v, ctor.Type, path)
	}
	if c, ok := s.codecs.Lookup(typ); ok {
		s.m.log.Debug("using registry codec", "type", typ.String(), "field", path)
		return s.viaCodec(c, v, path)
	}
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		return s.list(v, path, b)
	case reflect.Map:
		return s.object(v, path, b)
	case reflect.Ptr:
		return s.pointee(v, path, b)
	}
	return nil, &MarshalError{
		FieldPath: path,
		Message:   fmt.Sprintf("no designated constructor or codec for %s", typ),
		Err:       ErrCodecNotFound,
	}
}

func leafNode(v reflect.Value, path string) (*ir.Node, error) {
	switch k := v.Kind(); {
	case k == reflect.Bool:
		return ir.FromBool(v.Bool()), nil
	case k == reflect.String:
		return ir.FromString(v.String()), nil
	case isIntKind(k):
		return ir.FromInt(v.Int()), nil
	case isUintKind(k):
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, &MarshalError{
				FieldPath: path,
				Err: &TypeError{
					Expected: "int64",
					Actual:   v.Type().String(),
					Message:  fmt.Sprintf("%d overflows int64", u),
				},
			}
		}
		return ir.FromInt(int64(u)), nil
	default:
		return ir.FromFloat(v.Float()), nil
	}
}

func (s *encState) viaCodec(c codec.Codec, v reflect.Value, path string) (*ir.Node, error) {
	n, err := c.Encode(v.Interface())
	if err != nil {
		return nil, marshalAt(path, err)
	}
	if n == nil {
		return ir.Null(), nil
	}
	return n, nil
}

// list converts a slice or array to an array node.
func (s *encState) list(v reflect.Value, path string, b binding) (*ir.Node, error) {
	if v.Kind() == reflect.Slice && v.Len() > 0 {
		leave, err := s.enter(v, path)
		if err != nil {
			return nil, err
		}
		defer leave()
	}
	elems := make([]*ir.Node, v.Len())
	for i := range elems {
		n, err := s.value(v.Index(i), ir.AppendIndex(path, i), b)
		if err != nil {
			return nil, err
		}
		elems[i] = n
	}
	return ir.FromSlice(elems), nil
}

// object converts a map with string-kind keys to an object node with
// sorted keys.
func (s *encState) object(v reflect.Value, path string, b binding) (*ir.Node, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, &MarshalError{
			FieldPath: path,
			Message:   fmt.Sprintf("map keys must be strings, got %s", v.Type().Key()),
			Err:       ErrCodecNotFound,
		}
	}
	leave, err := s.enter(v, path)
	if err != nil {
		return nil, err
	}
	defer leave()

	keys := make([]string, 0, v.Len())
	vals := make(map[string]reflect.Value, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		keys = append(keys, k)
		vals[k] = iter.Value()
	}
	slices.Sort(keys)
	kvs := make([]ir.KeyVal, len(keys))
	for i, k := range keys {
		n, err := s.value(vals[k], ir.AppendField(path, k), b)
		if err != nil {
			return nil, err
		}
		kvs[i] = ir.KeyVal{Key: k, Val: n}
	}
	return ir.FromKeyVals(kvs), nil
}

// pointee encodes the value behind the non-nil pointer v.
func (s *encState) pointee(v reflect.Value, path string, b binding) (*ir.Node, error) {
	leave, err := s.enter(v, path)
	if err != nil {
		return nil, err
	}
	defer leave()
	return s.value(v.Elem(), path, b)
}

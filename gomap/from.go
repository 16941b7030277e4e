package gomap

import (
	"fmt"
	"reflect"

	"github.com/signadot/confmap/codec"
	"github.com/signadot/confmap/ir"
)

// decState carries one Deserialize or Decode call.
type decState struct {
	m      *Mapper
	codecs *codec.Registry
}

func (m *Mapper) newDecState() *decState {
	return &decState{m: m, codecs: m.codecs}
}

func (s *decState) withLocal(local *codec.Registry) *decState {
	if local.Len() == 0 {
		return s
	}
	return &decState{m: s.m, codecs: codec.Merge(local, s.codecs)}
}

// Deserialize builds a value of the record type t from the object node n
// through t's designated constructor. Keys are matched to fields
// case-insensitively. The result has type t.
func (m *Mapper) Deserialize(n *ir.Node, t reflect.Type) (any, error) {
	if n == nil || n.Type == ir.NullType {
		return nil, &UnmarshalError{Err: ErrNullInput}
	}
	ctor, err := m.Locate(t)
	if err != nil {
		return nil, &UnmarshalError{Err: err}
	}
	v, err := m.newDecState().record(n, ctor, "")
	if err != nil {
		return nil, err
	}
	out, ok := adapt(v, t)
	if !ok {
		return nil, &UnmarshalError{Err: &TypeError{Expected: t.String(), Actual: v.Type().String()}}
	}
	return out.Interface(), nil
}

// Decode builds a value of any type t from n: leaves, collections,
// records and types a codec handles. The result has type t, or is nil
// for a nil interface, pointer, slice or map.
func (m *Mapper) Decode(n *ir.Node, t reflect.Type) (any, error) {
	if n == nil {
		return nil, &UnmarshalError{Err: ErrNullInput}
	}
	if t == nil {
		return nil, &UnmarshalError{Err: &TypeError{Expected: "a type", Actual: "nil"}}
	}
	v, err := m.newDecState().value(n, t, "", binding{})
	if err != nil {
		return nil, err
	}
	if t.Kind() == reflect.Interface && v.IsNil() {
		return nil, nil
	}
	return v.Interface(), nil
}

// Decode is the generic form of Mapper.Decode.
func Decode[T any](m *Mapper, n *ir.Node) (T, error) {
	var zero T
	v, err := m.Decode(n, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	res, _ := v.(T)
	return res, nil
}

// record decodes the object n through ctor.
func (s *decState) record(n *ir.Node, ctor *Constructor, path string) (reflect.Value, error) {
	switch n.Type {
	case ir.ObjectType:
	case ir.NullType:
		return reflect.Value{}, &UnmarshalError{FieldPath: path, Err: ErrNullInput}
	default:
		return reflect.Value{}, &UnmarshalError{
			FieldPath: path,
			Err:       &TypeError{Expected: ir.ObjectType.String(), Actual: n.Type.String()},
		}
	}
	s = s.withLocal(ctor.Local)
	args := make([]reflect.Value, len(ctor.Fields))
	for i := range ctor.Fields {
		f := &ctor.Fields[i]
		fpath := ir.AppendField(path, f.Key)
		fn, ok := ir.GetFold(n, f.Key)
		if !ok {
			return reflect.Value{}, &UnmarshalError{FieldPath: fpath, Err: ErrMissingField}
		}
		v, err := s.value(fn, f.Type, fpath, binding{codec: f.Codec, hint: f.Hint})
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = v
	}
	v, err := ctor.construct(args)
	if err != nil {
		return reflect.Value{}, &UnmarshalError{FieldPath: path, Err: err}
	}
	return v, nil
}

// value decodes n into a value of type t.
func (s *decState) value(n *ir.Node, t reflect.Type, path string, b binding) (reflect.Value, error) {
	if n.Type == ir.NullType && isNullableType(t) {
		return reflect.Zero(t), nil
	}
	if b.hint != nil {
		if h := hintFor(t, b.hint); h != nil && n.Type != ir.NullType {
			v, err := s.value(n, h, path, binding{codec: b.codec})
			if err != nil {
				return reflect.Value{}, err
			}
			return into(v, t, path)
		}
	}
	if v, ok, err := direct(n, t, path, b.hint == nil && b.codec == nil); ok || err != nil {
		return v, err
	}
	if b.codec != nil && codecMatches(t, b.codec.Subject()) {
		return s.viaCodec(b.codec, n, t, path)
	}
	if elemCodec(t, b.codec) {
		return s.pointee(n, t, path, b)
	}
	if ctor, ok := s.m.lookupCtor(t); ok {
		v, err := s.record(n, ctor, path)
		if err != nil {
			return reflect.Value{}, err
		}
		return into(v, t, path)
	}
	if c, ok := s.codecs.Lookup(t); ok {
		s.m.log.Debug("using registry codec", "type", t.String(), "field", path)
		return s.viaCodec(c, n, t, path)
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return s.list(n, t, path, b)
	case reflect.Map:
		return s.object(n, t, path, b)
	case reflect.Ptr:
		return s.pointee(n, t, path, b)
	}
	if expected, ok := goTypeToIRType(t); ok && isLeafKind(t) {
		return reflect.Value{}, &UnmarshalError{
			FieldPath: path,
			Err:       &TypeError{Expected: fmt.Sprintf("%s (%s)", expected, t), Actual: n.Type.String()},
		}
	}
	return reflect.Value{}, &UnmarshalError{
		FieldPath: path,
		Message:   fmt.Sprintf("no designated constructor or codec for %s", t),
		Err:       ErrCodecNotFound,
	}
}

// pointee decodes n into a new value behind the pointer type t.
func (s *decState) pointee(n *ir.Node, t reflect.Type, path string, b binding) (reflect.Value, error) {
	v, err := s.value(n, t.Elem(), path, b)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(t.Elem())
	p.Elem().Set(v)
	return p, nil
}

// direct decodes leaf nodes into leaf kinds and, if plain is set, any
// node into an interface its plain Go form satisfies. ok is false when
// neither applies.
func direct(n *ir.Node, t reflect.Type, path string, plain bool) (v reflect.Value, ok bool, err error) {
	k := t.Kind()
	switch {
	case n.Type == ir.BoolType && k == reflect.Bool:
		return reflect.ValueOf(n.Bool).Convert(t), true, nil
	case n.Type == ir.StringType && k == reflect.String:
		return reflect.ValueOf(n.String).Convert(t), true, nil
	case n.Type == ir.NumberType && (isIntKind(k) || isUintKind(k) || isFloatKind(k)):
		var fits bool
		var text string
		switch {
		case n.Int64 != nil:
			v, fits = intValue(*n.Int64, t)
			text = fmt.Sprint(*n.Int64)
		case n.Float64 != nil:
			v, fits = floatValue(*n.Float64, t)
			text = fmt.Sprint(*n.Float64)
		}
		if !fits {
			return reflect.Value{}, false, &UnmarshalError{
				FieldPath: path,
				Err: &TypeError{
					Expected: t.String(),
					Actual:   n.Type.String(),
					Message:  fmt.Sprintf("%s does not fit %s", text, t),
				},
			}
		}
		return v, true, nil
	case plain && k == reflect.Interface:
		a := ir.ToAny(n)
		if a == nil {
			return reflect.Value{}, false, nil
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(t) {
			return reflect.Value{}, false, nil
		}
		r := reflect.New(t).Elem()
		r.Set(av)
		return r, true, nil
	}
	return reflect.Value{}, false, nil
}

// into adapts v to t, reporting a mismatch at path.
func into(v reflect.Value, t reflect.Type, path string) (reflect.Value, error) {
	out, ok := adapt(v, t)
	if !ok {
		return reflect.Value{}, &UnmarshalError{
			FieldPath: path,
			Err:       &TypeError{Expected: t.String(), Actual: typeName(dynamicType(v))},
		}
	}
	if !out.IsValid() {
		return reflect.Zero(t), nil
	}
	if out.Type() != t {
		r := reflect.New(t).Elem()
		r.Set(out)
		return r, nil
	}
	return out, nil
}

func (s *decState) viaCodec(c codec.Codec, n *ir.Node, t reflect.Type, path string) (reflect.Value, error) {
	x, err := c.Decode(n)
	if err != nil {
		return reflect.Value{}, unmarshalAt(path, err)
	}
	return into(reflect.ValueOf(x), t, path)
}

// list decodes an array node into a slice or array of type t.
func (s *decState) list(n *ir.Node, t reflect.Type, path string, b binding) (reflect.Value, error) {
	if n.Type != ir.ArrayType {
		return reflect.Value{}, &UnmarshalError{
			FieldPath: path,
			Err:       &TypeError{Expected: ir.ArrayType.String(), Actual: n.Type.String()},
		}
	}
	var res reflect.Value
	if t.Kind() == reflect.Array {
		if len(n.Values) != t.Len() {
			return reflect.Value{}, &UnmarshalError{
				FieldPath: path,
				Err: &TypeError{
					Expected: t.String(),
					Actual:   n.Type.String(),
					Message:  fmt.Sprintf("%s needs %d elements, got %d", t, t.Len(), len(n.Values)),
				},
			}
		}
		res = reflect.New(t).Elem()
	} else {
		res = reflect.MakeSlice(t, len(n.Values), len(n.Values))
	}
	for i, en := range n.Values {
		v, err := s.value(en, t.Elem(), ir.AppendIndex(path, i), b)
		if err != nil {
			return reflect.Value{}, err
		}
		res.Index(i).Set(v)
	}
	return res, nil
}

// object decodes an object node into a map of type t with string-kind
// keys.
func (s *decState) object(n *ir.Node, t reflect.Type, path string, b binding) (reflect.Value, error) {
	if t.Key().Kind() != reflect.String {
		return reflect.Value{}, &UnmarshalError{
			FieldPath: path,
			Message:   fmt.Sprintf("map keys must be strings, got %s", t.Key()),
			Err:       ErrCodecNotFound,
		}
	}
	if n.Type != ir.ObjectType {
		return reflect.Value{}, &UnmarshalError{
			FieldPath: path,
			Err:       &TypeError{Expected: ir.ObjectType.String(), Actual: n.Type.String()},
		}
	}
	res := reflect.MakeMapWithSize(t, len(n.Fields))
	for i, kn := range n.Fields {
		v, err := s.value(n.Values[i], t.Elem(), ir.AppendField(path, kn.String), b)
		if err != nil {
			return reflect.Value{}, err
		}
		res.SetMapIndex(reflect.ValueOf(kn.String).Convert(t.Key()), v)
	}
	return res, nil
}

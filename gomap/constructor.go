package gomap

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"

	"github.com/signadot/confmap/codec"
)

var errorType = reflect.TypeFor[error]()

// Constructor is the designated constructor of a record type.
//
// Parameter i receives the decoded value of Fields[i].
type Constructor struct {
	// Type is the record struct type.
	Type reflect.Type
	// Result is what the constructor returns: Type or a pointer to it.
	Result reflect.Type
	// Params are the constructor parameter types.
	Params []reflect.Type
	// Fields are the record's descriptors with bound codecs and hints.
	Fields []FieldDescriptor
	// Local holds codecs consulted before the mapper's within the record.
	Local *codec.Registry

	fn     reflect.Value // invalid for field-wise constructors
	hasErr bool
}

// String names the constructor function, or the record for field-wise
// constructors.
func (c *Constructor) String() string {
	if !c.fn.IsValid() {
		return "fields of " + c.Type.String()
	}
	if f := runtime.FuncForPC(c.fn.Pointer()); f != nil {
		return f.Name()
	}
	return c.fn.Type().String()
}

func (m *Mapper) newConstructor(cc *ctorConfig) (*Constructor, error) {
	c := &Constructor{}
	if cc.record != nil {
		c.Result = cc.record
	} else {
		if !cc.fn.IsValid() || cc.fn.Kind() != reflect.Func || cc.fn.IsNil() {
			return nil, fmt.Errorf("%w: %v is not a function", ErrConstructorShape, cc.fn)
		}
		c.fn = cc.fn
		ft := cc.fn.Type()
		switch {
		case ft.IsVariadic():
			return nil, fmt.Errorf("%w: %s is variadic", ErrConstructorShape, ft)
		case ft.NumOut() == 1:
		case ft.NumOut() == 2 && ft.Out(1) == errorType:
			c.hasErr = true
		default:
			return nil, fmt.Errorf("%w: %s must return a record or a record and an error", ErrConstructorShape, ft)
		}
		c.Result = ft.Out(0)
	}
	rt, ok := recordType(c.Result)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a struct or pointer to struct", ErrConstructorShape, c.Result)
	}
	c.Type = rt

	fds, err := m.resolve(rt)
	if err != nil {
		return nil, err
	}
	c.Fields = slices.Clone(fds)

	if c.fn.IsValid() {
		ft := c.fn.Type()
		if ft.NumIn() != len(c.Fields) {
			return nil, fmt.Errorf("%w: %s takes %d parameters, %s has %d fields",
				ErrConstructorShape, c, ft.NumIn(), rt, len(c.Fields))
		}
		for i := 0; i < ft.NumIn(); i++ {
			c.Params = append(c.Params, ft.In(i))
		}
	} else {
		for _, f := range c.Fields {
			c.Params = append(c.Params, f.Type)
		}
	}

	for _, name := range cc.order {
		i := findField(c.Fields, name)
		if i < 0 {
			return nil, fmt.Errorf("%w %q in %s", ErrUnknownField, name, rt)
		}
		f := &c.Fields[i]
		if cd, ok := cc.codecs[name]; ok {
			if err := bindCodec(f, cd); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", rt, f.Name, err)
			}
		}
		if h, ok := cc.hints[name]; ok {
			if err := bindHint(f, h); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", rt, f.Name, err)
			}
		}
	}

	if len(cc.local) > 0 {
		c.Local, err = codec.NewRegistry(cc.local...)
		if err != nil {
			return nil, fmt.Errorf("local codecs of %s: %w", rt, err)
		}
	}
	return c, nil
}

func bindCodec(f *FieldDescriptor, cd codec.Codec) error {
	if cd == nil || cd.Subject() == nil {
		return codec.ErrInvalidCodec
	}
	if isLeafKind(f.Type) {
		return fmt.Errorf("%w: %s values are encoded directly", ErrConstructorShape, f.Type)
	}
	if !reaches(f.Type, func(t reflect.Type) bool { return codecMatches(t, cd.Subject()) }) {
		return fmt.Errorf("%w: codec for %s cannot serve %s", ErrConstructorShape, cd.Subject(), f.Type)
	}
	f.Codec = cd
	return nil
}

func bindHint(f *FieldDescriptor, h reflect.Type) error {
	if h == nil {
		return fmt.Errorf("%w: nil hint", ErrConstructorShape)
	}
	if !reaches(f.Type, func(t reflect.Type) bool { return hintFor(t, h) != nil }) {
		return fmt.Errorf("%w: hint %s does not satisfy %s", ErrConstructorShape, h, f.Type)
	}
	f.Hint = h
	return nil
}

// reaches reports whether ok holds for t or for a type reached from t
// through pointers and collection elements.
func reaches(t reflect.Type, ok func(reflect.Type) bool) bool {
	for {
		if ok(t) {
			return true
		}
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		default:
			return false
		}
	}
}

// codecMatches reports whether a codec for subject can produce and
// consume values of t.
func codecMatches(t, subject reflect.Type) bool {
	return t.AssignableTo(subject) || subject.AssignableTo(t)
}

// elemCodec reports whether c serves the value behind the pointer type t
// rather than t itself.
func elemCodec(t reflect.Type, c codec.Codec) bool {
	if c == nil || t.Kind() != reflect.Ptr || codecMatches(t, c.Subject()) {
		return false
	}
	return reaches(t.Elem(), func(e reflect.Type) bool { return codecMatches(e, c.Subject()) })
}

// hintFor returns the concrete type to build for an interface t hinted
// with h: h itself or a pointer to it, whichever implements t.
func hintFor(t, h reflect.Type) reflect.Type {
	if t.Kind() != reflect.Interface {
		return nil
	}
	if h.AssignableTo(t) {
		return h
	}
	if p := reflect.PointerTo(h); p.AssignableTo(t) {
		return p
	}
	return nil
}

// construct builds a record from the decoded field values args.
func (c *Constructor) construct(args []reflect.Value) (reflect.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v, ok := adapt(a, c.Params[i])
		if !ok {
			return reflect.Value{}, c.mismatch(args)
		}
		in[i] = v
	}
	if !c.fn.IsValid() {
		out := reflect.New(c.Type).Elem()
		for i := range c.Fields {
			setField(out, c.Fields[i].Index, in[i])
		}
		if c.Result.Kind() == reflect.Ptr {
			return out.Addr(), nil
		}
		return out, nil
	}
	return c.call(in)
}

func (c *Constructor) call(in []reflect.Value) (res reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor %s of %s panicked: %v", c, c.Type, r)
		}
	}()
	out := c.fn.Call(in)
	if c.hasErr && !out[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("constructing %s: %w", c.Type, out[1].Interface().(error))
	}
	if out[0].Kind() == reflect.Ptr && out[0].IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: constructor %s returned nil", ErrNullValue, c)
	}
	return out[0], nil
}

func (c *Constructor) mismatch(args []reflect.Value) error {
	actual := make([]reflect.Type, len(args))
	for i, a := range args {
		actual[i] = dynamicType(a)
	}
	return &ArgumentMismatchError{
		Type:     c.Type,
		Expected: slices.Clone(c.Params),
		Actual:   actual,
	}
}

// dynamicType is the type of the value held by v, or nil for an invalid
// value or nil interface.
func dynamicType(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Type()
	}
	return v.Type()
}

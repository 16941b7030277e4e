package gomap

import (
	"math"
	"reflect"
)

// adapt converts v to a value assignable to want without losing
// information. A nil or invalid v adapts to the zero value of nullable
// types only.
func adapt(v reflect.Value, want reflect.Type) (reflect.Value, bool) {
	if v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			v = reflect.Value{}
		} else {
			v = v.Elem()
		}
	}
	if !v.IsValid() {
		if isNullableType(want) {
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false
	}
	t := v.Type()
	switch {
	case t.AssignableTo(want):
		return v, true
	case want.Kind() == reflect.Ptr && t.AssignableTo(want.Elem()):
		p := reflect.New(want.Elem())
		p.Elem().Set(v)
		return p, true
	case t.Kind() == reflect.Ptr:
		if v.IsNil() {
			return adapt(reflect.Value{}, want)
		}
		return adapt(v.Elem(), want)
	case want.Kind() == reflect.Interface && reflect.PointerTo(t).Implements(want):
		p := reflect.New(t)
		p.Elem().Set(v)
		return p, true
	case want.Kind() == reflect.Ptr:
		inner, ok := adapt(v, want.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		p := reflect.New(want.Elem())
		p.Elem().Set(inner)
		return p, true
	}
	return convert(v, want)
}

// convert handles conversions between values of the same scalar family.
func convert(v reflect.Value, want reflect.Type) (reflect.Value, bool) {
	switch k := v.Kind(); {
	case isIntKind(k):
		return intValue(v.Int(), want)
	case isUintKind(k):
		return uintValue(v.Uint(), want)
	case isFloatKind(k):
		return floatValue(v.Float(), want)
	case (k == reflect.Bool || k == reflect.String) && want.Kind() == k:
		return v.Convert(want), true
	}
	return reflect.Value{}, false
}

// intValue returns i as a value of type want, if want is numeric and i
// fits exactly.
func intValue(i int64, want reflect.Type) (reflect.Value, bool) {
	r := reflect.New(want).Elem()
	switch k := want.Kind(); {
	case isIntKind(k):
		if r.OverflowInt(i) {
			return reflect.Value{}, false
		}
		r.SetInt(i)
	case isUintKind(k):
		if i < 0 || r.OverflowUint(uint64(i)) {
			return reflect.Value{}, false
		}
		r.SetUint(uint64(i))
	case isFloatKind(k):
		f := float64(i)
		if f >= math.MaxInt64 || int64(f) != i {
			return reflect.Value{}, false
		}
		if k == reflect.Float32 && int64(float32(f)) != i {
			return reflect.Value{}, false
		}
		r.SetFloat(f)
	default:
		return reflect.Value{}, false
	}
	return r, true
}

func uintValue(u uint64, want reflect.Type) (reflect.Value, bool) {
	if u <= math.MaxInt64 {
		return intValue(int64(u), want)
	}
	r := reflect.New(want).Elem()
	switch k := want.Kind(); {
	case isUintKind(k):
		if r.OverflowUint(u) {
			return reflect.Value{}, false
		}
		r.SetUint(u)
		return r, true
	}
	return reflect.Value{}, false
}

// floatValue returns f as a value of type want. Integer kinds accept
// only integral f within range; float32 accepts any f within its range.
func floatValue(f float64, want reflect.Type) (reflect.Value, bool) {
	r := reflect.New(want).Elem()
	switch k := want.Kind(); {
	case isFloatKind(k):
		if r.OverflowFloat(f) {
			return reflect.Value{}, false
		}
		r.SetFloat(f)
		return r, true
	case isIntKind(k), isUintKind(k):
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return reflect.Value{}, false
		}
		if f >= -(1<<63) && f < 1<<63 {
			return intValue(int64(f), want)
		}
		if f >= 0 && f < 1<<64 {
			return uintValue(uint64(f), want)
		}
	}
	return reflect.Value{}, false
}

package gomap

import (
	"reflect"
	"unsafe"
)

// exposed returns f with the read-only flag of unexported fields lifted.
// f must be addressable.
func exposed(f reflect.Value) reflect.Value {
	if f.CanSet() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// addressable returns v itself if it is addressable, else an addressable
// copy.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	p := reflect.New(v.Type()).Elem()
	p.Set(v)
	return p
}

// readField returns the field f of the addressable struct v. A field
// behind a nil embedded pointer reads as its zero value.
func readField(v reflect.Value, f *FieldDescriptor) reflect.Value {
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Zero(f.Type)
			}
			v = v.Elem()
		}
		v = exposed(v.Field(x))
	}
	return v
}

// setField assigns x to the field of the addressable struct v at index,
// allocating nil embedded pointers on the path.
func setField(v reflect.Value, index []int, x reflect.Value) {
	for i, idx := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = exposed(v.Field(idx))
	}
	if !x.IsValid() {
		v.SetZero()
		return
	}
	v.Set(x)
}

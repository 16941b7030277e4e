package gomap

import (
	"reflect"

	"github.com/signadot/confmap/ir"
)

// goTypeToIRType maps a Go type to the node type its values encode to.
// Interfaces report ok=false: their node type is only known at runtime.
func goTypeToIRType(goType reflect.Type) (ir.Type, bool) {
	switch goType.Kind() {
	case reflect.String:
		return ir.StringType, true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return ir.NumberType, true

	case reflect.Bool:
		return ir.BoolType, true

	case reflect.Slice, reflect.Array:
		return ir.ArrayType, true

	case reflect.Map, reflect.Struct:
		return ir.ObjectType, true

	case reflect.Ptr:
		return goTypeToIRType(goType.Elem())

	default:
		return 0, false
	}
}

// isLeafKind reports whether values of goType map to a single scalar
// node without consulting any codec.
func isLeafKind(goType reflect.Type) bool {
	switch goType.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// isNullableType determines if a Go type represents a nullable value.
// Types that are nullable:
//   - Pointer types (*T)
//   - Interface types (interface{})
//   - Slice types ([]T) - can be nil
//   - Map types (map[K]V) - can be nil
func isNullableType(goType reflect.Type) bool {
	kind := goType.Kind()
	return kind == reflect.Ptr ||
		kind == reflect.Interface ||
		kind == reflect.Slice ||
		kind == reflect.Map
}

// recordType returns the struct type behind t, dereferencing one pointer
// level.
func recordType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

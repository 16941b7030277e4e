package ir

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// FromAny converts a plain Go tree, such as the result of decoding YAML
// or JSON into an interface{}, to a node tree.
//
// Supported: nil, bool, every integer and float kind, string, slices and
// arrays, maps whose keys are strings or can be printed, *Node (cloned).
// Map entries are ordered by key.
func FromAny(v any) (*Node, error) {
	if v == nil {
		return Null(), nil
	}
	if n, ok := v.(*Node); ok {
		if n == nil {
			return Null(), nil
		}
		return n.Clone(), nil
	}
	return fromValue(reflect.ValueOf(v))
}

func fromValue(val reflect.Value) (*Node, error) {
	switch val.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Bool:
		return FromBool(val.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FromInt(val.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := val.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupported, u)
		}
		return FromInt(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return FromFloat(val.Float()), nil
	case reflect.String:
		return FromString(val.String()), nil
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return Null(), nil
		}
		if n, ok := val.Interface().(*Node); ok {
			return n.Clone(), nil
		}
		return fromValue(val.Elem())
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return Null(), nil
		}
		elems := make([]*Node, val.Len())
		for i := range elems {
			elem, err := fromValue(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = elem
		}
		return FromSlice(elems), nil
	case reflect.Map:
		if val.IsNil() {
			return Null(), nil
		}
		type entry struct {
			key string
			val reflect.Value
		}
		entries := make([]entry, 0, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Kind() == reflect.Interface {
				k = k.Elem()
			}
			var key string
			if k.Kind() == reflect.String {
				key = k.String()
			} else {
				key = fmt.Sprint(k.Interface())
			}
			entries = append(entries, entry{key: key, val: iter.Value()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		res := NewObject()
		for _, e := range entries {
			v, err := fromValue(e.val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.key, err)
			}
			res.Set(e.key, v)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, val.Type())
	}
}

// ToAny converts y to plain Go values: nil, bool, int64, float64, string,
// []any and map[string]any.
func ToAny(y *Node) any {
	if y == nil {
		return nil
	}
	switch y.Type {
	case BoolType:
		return y.Bool
	case NumberType:
		if y.Int64 != nil {
			return *y.Int64
		}
		if y.Float64 != nil {
			return *y.Float64
		}
		return nil
	case StringType:
		return y.String
	case ArrayType:
		res := make([]any, len(y.Values))
		for i, v := range y.Values {
			res[i] = ToAny(v)
		}
		return res
	case ObjectType:
		res := make(map[string]any, len(y.Fields))
		for i, f := range y.Fields {
			res[f.String] = ToAny(y.Values[i])
		}
		return res
	default:
		return nil
	}
}

package ir

import (
	"maps"
	"slices"
	"strings"
)

// Node is one value of an encoded tree.
//
// For ObjectType nodes, Fields[i] is the (StringType) key of Values[i].
// For ArrayType nodes, Fields is empty. A NumberType node carries exactly
// one of Int64 and Float64.
type Node struct {
	Type   Type
	Fields []*Node
	Values []*Node

	String  string
	Bool    bool
	Float64 *float64
	Int64   *int64
}

func (y *Node) Clone() *Node {
	if y == nil {
		return nil
	}
	dst := &Node{
		Type:   y.Type,
		String: y.String,
		Bool:   y.Bool,
	}
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	if y.Fields != nil {
		dst.Fields = make([]*Node, len(y.Fields))
		for i, yf := range y.Fields {
			dst.Fields[i] = yf.Clone()
		}
	}
	if y.Values != nil {
		dst.Values = make([]*Node, len(y.Values))
		for i, yv := range y.Values {
			dst.Values[i] = yv.Clone()
		}
	}
	return dst
}

func FromString(v string) *Node {
	return &Node{
		Type:   StringType,
		String: v,
	}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

// IsInt reports whether y is an integer number.
func (y *Node) IsInt() bool {
	return y != nil && y.Type == NumberType && y.Int64 != nil
}

// IsFloat reports whether y is a floating point number.
func (y *Node) IsFloat() bool {
	return y != nil && y.Type == NumberType && y.Int64 == nil && y.Float64 != nil
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{
		Type:   ObjectType,
		Fields: []*Node{},
		Values: []*Node{},
	}
}

// FromMap builds an object from yMap with keys in sorted order.
func FromMap(yMap map[string]*Node) *Node {
	res := NewObject()
	for _, key := range slices.Sorted(maps.Keys(yMap)) {
		res.Set(key, yMap[key])
	}
	return res
}

type KeyVal struct {
	Key string
	Val *Node
}

// FromKeyVals builds an object keeping the order of kvs. A repeated key
// keeps its first position and its last value.
func FromKeyVals(kvs []KeyVal) *Node {
	res := NewObject()
	for _, kv := range kvs {
		res.Set(kv.Key, kv.Val)
	}
	return res
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type:   ArrayType,
		Values: make([]*Node, len(ySlice)),
	}
	for i, y := range ySlice {
		if y == nil {
			y = Null()
		}
		res.Values[i] = y
	}
	return res
}

// Set stores val under key. An existing key (compared exactly) is
// replaced in place; otherwise the pair is appended. y must be an
// object.
func (y *Node) Set(key string, val *Node) {
	if val == nil {
		val = Null()
	}
	for i, f := range y.Fields {
		if f.String == key {
			y.Values[i] = val
			return
		}
	}
	y.Fields = append(y.Fields, FromString(key))
	y.Values = append(y.Values, val)
}

// Get returns the value stored under exactly field, or nil.
func Get(y *Node, field string) *Node {
	if y == nil || y.Type != ObjectType {
		return nil
	}
	n := len(y.Fields)
	for i := range n {
		if y.Fields[i].String == field {
			return y.Values[i]
		}
	}
	return nil
}

// GetFold returns the value whose key equals field under Unicode case
// folding. An exact match wins; otherwise the first folded match in key
// order is returned.
func GetFold(y *Node, field string) (*Node, bool) {
	if y == nil || y.Type != ObjectType {
		return nil, false
	}
	if v := Get(y, field); v != nil {
		return v, true
	}
	for i, f := range y.Fields {
		if strings.EqualFold(f.String, field) {
			return y.Values[i], true
		}
	}
	return nil, false
}

// Keys returns the object keys in order.
func (y *Node) Keys() []string {
	if y == nil || y.Type != ObjectType {
		return nil
	}
	res := make([]string, len(y.Fields))
	for i, f := range y.Fields {
		res[i] = f.String
	}
	return res
}

// Len is the number of entries of an object or array, 0 otherwise.
func (y *Node) Len() int {
	if y == nil {
		return 0
	}
	return len(y.Values)
}

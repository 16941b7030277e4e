// Package ir provides the encoded form that confmap maps Go values to and
// from.
//
// # Overview
//
// An encoded tree is made of *Node values. The tree is format neutral:
// it carries no positions, comments or styling, so any text format that
// can express null, booleans, numbers, strings, lists and string-keyed
// maps can be decoded into it or encoded from it by a separate layer.
//
// The IR works as a recursive tagged union structure, where values are
// placed in fields depending on the node type.
//
// # Node Types
//
// The Type field indicates the node's type:
//
//   - NullType: null value
//   - BoolType: boolean (true/false)
//   - NumberType: numeric value (int64 or float64)
//   - StringType: string value
//   - ArrayType: ordered list of nodes
//   - ObjectType: key-value pairs (fields and values)
//
// # Creating Nodes
//
// Use constructor functions to create nodes:
//
//	node := ir.FromString("hello")
//	num := ir.FromInt(42)
//	flag := ir.FromBool(true)
//	obj := ir.FromMap(map[string]*ir.Node{
//	    "key": ir.FromString("value"),
//	})
//	arr := ir.FromSlice([]*ir.Node{
//	    ir.FromInt(1),
//	    ir.FromInt(2),
//	})
//
// Plain Go trees convert with FromAny and ToAny.
//
// # IR Structure Constraints
//
// ## Objects
//
// For ObjectType nodes, Fields[i] is the key for the value at Values[i], so
// there will always be the same number of fields as values. Keys are
// StringType nodes and are unique when compared exactly. GetFold looks
// keys up ignoring case.
//
// ## Numbers
//
// A NumberType node sets exactly one of Int64 and Float64. The two are
// distinct variants: FromInt(1) and FromFloat(1) are not Equal.
package ir

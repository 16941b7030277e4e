package gomap

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/signadot/confmap/codec"
)

// FieldDescriptor is the resolved mapping metadata of one record field.
type FieldDescriptor struct {
	// Name is the declared Go field name.
	Name string
	// Key is the encoded key: the tag rename if present, else Name.
	Key string
	// Type is the declared type of the field.
	Type reflect.Type
	// Index is the reflect index path, through embedded structs.
	Index []int
	// Exported reports whether the field is exported.
	Exported bool
	// Codec, if set, is the explicit codec bound to the field.
	Codec codec.Codec
	// Hint, if set, is the concrete type built for an interface-typed
	// field or element.
	Hint reflect.Type
}

// Fields returns the field descriptors of the record type t (a struct or
// pointer to struct). The type's own fields come first in declaration
// order, followed by the fields of each embedded struct in embedding
// order. Excluded fields are omitted.
//
// If t has a designated constructor, the descriptors carry the codecs and
// hints bound at registration.
func (m *Mapper) Fields(t reflect.Type) ([]FieldDescriptor, error) {
	rt, ok := recordType(t)
	if !ok {
		return nil, &TypeError{Expected: "struct", Actual: typeName(t)}
	}
	if ctor, ok := m.ctors[rt]; ok {
		return slices.Clone(ctor.Fields), nil
	}
	fds, err := m.resolve(rt)
	if err != nil {
		return nil, err
	}
	return slices.Clone(fds), nil
}

// resolve returns the cached descriptors of struct type rt. The result is
// shared and must not be modified.
func (m *Mapper) resolve(rt reflect.Type) ([]FieldDescriptor, error) {
	if cached, ok := m.fields.Load(rt); ok {
		return cached.([]FieldDescriptor), nil
	}
	fds, err := resolveFields(rt, m.tagKey)
	if err != nil {
		return nil, err
	}
	actual, _ := m.fields.LoadOrStore(rt, fds)
	return actual.([]FieldDescriptor), nil
}

func resolveFields(rt reflect.Type, tagKey string) ([]FieldDescriptor, error) {
	res := []FieldDescriptor{}
	return appendFields(res, rt, nil, tagKey, map[reflect.Type]bool{})
}

func appendFields(dst []FieldDescriptor, t reflect.Type, prefix []int, tagKey string, active map[reflect.Type]bool) ([]FieldDescriptor, error) {
	// an embedding cycle through pointers contributes its fields once
	if active[t] {
		return dst, nil
	}
	active[t] = true
	defer delete(active, t)

	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			continue
		}
		tag, err := parseFieldTag(sf, tagKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		if tag.Exclude {
			continue
		}
		index := append(slices.Clone(prefix), i)
		if sf.Anonymous && tag.Name == "" {
			if _, ok := recordType(sf.Type); ok {
				sf.Index = index
				embedded = append(embedded, sf)
				continue
			}
		}
		key := sf.Name
		if tag.Name != "" {
			key = tag.Name
		}
		dst = append(dst, FieldDescriptor{
			Name:     sf.Name,
			Key:      key,
			Type:     sf.Type,
			Index:    index,
			Exported: sf.IsExported(),
		})
	}
	for _, sf := range embedded {
		et, _ := recordType(sf.Type)
		var err error
		dst, err = appendFields(dst, et, sf.Index, tagKey, active)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// findField returns the index of the descriptor named name, matching the
// Go field name first and the encoded key second.
func findField(fds []FieldDescriptor, name string) int {
	for i := range fds {
		if fds[i].Name == name {
			return i
		}
	}
	for i := range fds {
		if fds[i].Key == name {
			return i
		}
	}
	return -1
}

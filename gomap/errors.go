package gomap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNullValue is returned when asked to encode a nil value.
	ErrNullValue = errors.New("value should not be null")

	// ErrNullInput is returned when asked to decode a nil or null tree.
	ErrNullInput = errors.New("cannot decode null")

	// ErrNoDesignatedConstructor is returned for types with no registered
	// constructor where one is required.
	ErrNoDesignatedConstructor = errors.New("no designated constructor")

	// ErrAmbiguousConstructor is returned by NewMapper when a record type
	// is registered more than once.
	ErrAmbiguousConstructor = errors.New("ambiguous designated constructor")

	// ErrConstructorShape is returned by NewMapper when a constructor
	// cannot be bound to the fields of its record type.
	ErrConstructorShape = errors.New("constructor does not match record fields")

	// ErrUnknownField is returned by NewMapper when a constructor option
	// names a field the record type does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrMissingField is returned when an encoded object lacks the key of
	// a constructor parameter.
	ErrMissingField = errors.New("missing field")

	// ErrCodecNotFound is returned when no codec can handle a type.
	ErrCodecNotFound = errors.New("codec not found")

	// ErrCircularReference is returned when a value refers back to a
	// value being encoded.
	ErrCircularReference = errors.New("circular reference")

	// ErrTypeMismatch is wrapped by *TypeError.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrConstructorArgumentMismatch is wrapped by *ArgumentMismatchError.
	ErrConstructorArgumentMismatch = errors.New("value and constructor parameters did not match")
)

// MarshalError represents an error during marshaling
type MarshalError struct {
	FieldPath string // Field path (e.g., "person.address.street")
	Message   string
	Err       error
}

func (e *MarshalError) Error() string {
	msg := joinMessage(e.Message, e.Err)
	if e.FieldPath != "" {
		return fmt.Sprintf("marshal error at %s: %s", e.FieldPath, msg)
	}
	return fmt.Sprintf("marshal error: %s", msg)
}

func (e *MarshalError) Unwrap() error {
	return e.Err
}

// UnmarshalError represents an error during unmarshaling
type UnmarshalError struct {
	FieldPath string // Field path (e.g., "person.address.street")
	Message   string
	Err       error
}

func (e *UnmarshalError) Error() string {
	msg := joinMessage(e.Message, e.Err)
	if e.FieldPath != "" {
		return fmt.Sprintf("unmarshal error at %s: %s", e.FieldPath, msg)
	}
	return fmt.Sprintf("unmarshal error: %s", msg)
}

func (e *UnmarshalError) Unwrap() error {
	return e.Err
}

// TypeError represents a type mismatch error
type TypeError struct {
	Expected string
	Actual   string
	Message  string
}

func (e *TypeError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("type error: %s", msg)
}

func (e *TypeError) Unwrap() error {
	return ErrTypeMismatch
}

// ArgumentMismatchError reports decoded values that do not fit the
// parameters of a record's constructor. A nil entry in Actual stands for
// a nil value.
type ArgumentMismatchError struct {
	Type     reflect.Type
	Expected []reflect.Type
	Actual   []reflect.Type
}

func (e *ArgumentMismatchError) Error() string {
	return fmt.Sprintf("%s for %s\nconstructor: %s\nvalues     : %s",
		ErrConstructorArgumentMismatch, e.Type, typeList(e.Expected), typeList(e.Actual))
}

func (e *ArgumentMismatchError) Unwrap() error {
	return ErrConstructorArgumentMismatch
}

func typeList(ts []reflect.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			names[i] = "nil"
			continue
		}
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func joinMessage(msg string, err error) string {
	switch {
	case err == nil:
		return msg
	case msg == "":
		return err.Error()
	default:
		return msg + ": " + err.Error()
	}
}

// marshalAt attributes err to the field or index seg. An error that
// already carries a path gets seg prefixed; anything else is wrapped
// once.
func marshalAt(seg string, err error) error {
	if me, ok := err.(*MarshalError); ok {
		me.FieldPath = joinPath(seg, me.FieldPath)
		return me
	}
	return &MarshalError{FieldPath: seg, Err: err}
}

func unmarshalAt(seg string, err error) error {
	if ue, ok := err.(*UnmarshalError); ok {
		ue.FieldPath = joinPath(seg, ue.FieldPath)
		return ue
	}
	return &UnmarshalError{FieldPath: seg, Err: err}
}

// joinPath prefixes the already formatted path rest with seg.
func joinPath(seg, rest string) string {
	switch {
	case rest == "":
		return seg
	case seg == "":
		return rest
	case strings.HasPrefix(rest, "["):
		return seg + rest
	default:
		return seg + "." + rest
	}
}

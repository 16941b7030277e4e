package gomap

import (
	"errors"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/confmap/codec"
	"github.com/signadot/confmap/ir"
)

func TestSerialize(t *testing.T) {
	m := newTestMapper(t,
		WithConstructor(newSimple),
		WithConstructor(newListener),
		WithRecord[derived](),
		WithRecord[withPtrBase](),
		WithRecord[inner](),
		WithRecord[outer](),
		WithRecord[square](),
		WithRecord[circle](),
		WithRecord[drawing](),
	)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "leaf fields",
			in:   simple{FieldTest: 7, Text: "x"},
			want: `
FieldTest: 7
Text: x
`,
		},
		{
			name: "rename and exclusion",
			in:   &listener{Host: "localhost", Port: 8080, token: "secret"},
			want: `
hostname: localhost
Port: 8080
`,
		},
		{
			name: "inherited fields",
			in:   derived{testing: true, base: base{test: true}},
			want: `
testing: true
test: true
`,
		},
		{
			name: "nil embedded pointer reads as zero",
			in:   withPtrBase{Name: "n"},
			want: `
Name: n
test: false
`,
		},
		{
			name: "nested records and collections",
			in: outer{
				Name:  "o",
				Inner: inner{Value: 1, Label: "one"},
				Items: []inner{{Value: 2, Label: "two"}, {Value: 3}},
				Tags:  map[string]string{"b": "2", "a": "1"},
			},
			want: `
Name: o
Inner:
  Value: 1
  Label: one
Items:
- Value: 2
  Label: two
- Value: 3
  Label: ""
Ptr: null
Tags:
  a: "1"
  b: "2"
`,
		},
		{
			name: "interface fields",
			in: drawing{
				Shapes: []shape{square{Side: 2}, &circle{Radius: 1}},
				Main:   square{Side: 1.5},
				Extra:  map[string]any{"k": []any{1, "v", nil}},
			},
			want: `
Shapes:
- Side: 2.0
- Radius: 1.0
Main:
  Side: 1.5
Extra:
  k: [1, v, null]
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Serialize(tt.in)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			if got.Type != ir.ObjectType {
				t.Fatalf("Serialize() type = %s, want object", got.Type)
			}
			if diff := cmp.Diff(yamlNode(t, tt.want), got); diff != "" {
				t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerializeKeyOrder(t *testing.T) {
	m := newTestMapper(t, WithRecord[derived]())
	n, err := m.Serialize(&derived{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"testing", "test"}, n.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeDuplicateKeyLastWins(t *testing.T) {
	type dup struct {
		A int `config:"name=k"`
		B int `config:"name=k"`
	}
	m := newTestMapper(t)
	n, err := m.Serialize(dup{A: 1, B: 2})
	if err != nil {
		t.Fatal(err)
	}
	if n.Len() != 1 || *ir.Get(n, "k").Int64 != 2 {
		t.Errorf("Serialize(dup) = %v, want {k: 2}", ir.ToAny(n))
	}
}

func TestSerializeErrors(t *testing.T) {
	m := newTestMapper(t, WithRecord[chain](), WithRecord[inner]())

	loop := &chain{Name: "a"}
	loop.Next = &chain{Name: "b", Next: loop}

	tests := []struct {
		name     string
		in       any
		want     error
		wantPath string
	}{
		{name: "nil", in: nil, want: ErrNullValue},
		{name: "nil pointer", in: (*simple)(nil), want: ErrNullValue},
		{name: "not a record", in: 42, want: ErrTypeMismatch},
		{name: "no codec", in: unsupported{Name: "u", C: make(chan int)}, want: ErrCodecNotFound, wantPath: "C"},
		{name: "circular reference", in: loop, want: ErrCircularReference, wantPath: "Next.Next"},
		{
			name:     "uint overflow",
			in:       struct{ Big uint64 }{Big: math.MaxUint64},
			want:     ErrTypeMismatch,
			wantPath: "Big",
		},
		{
			name:     "unregistered nested record",
			in:       struct{ S simple }{},
			want:     ErrCodecNotFound,
			wantPath: "S",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Serialize(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Serialize() error = %v, want %v", err, tt.want)
			}
			var me *MarshalError
			if !errors.As(err, &me) {
				t.Fatalf("Serialize() error %T is not a *MarshalError", err)
			}
			if me.FieldPath != tt.wantPath {
				t.Errorf("FieldPath = %q, want %q", me.FieldPath, tt.wantPath)
			}
		})
	}
}

func TestSerializeSharedValueIsNotACycle(t *testing.T) {
	m := newTestMapper(t, WithRecord[inner]())
	shared := &inner{Value: 1}
	type pair struct {
		A, B *inner
	}
	n, err := m.Serialize(pair{A: shared, B: shared})
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if diff := cmp.Diff(ir.Get(n, "A"), ir.Get(n, "B")); diff != "" {
		t.Errorf("shared value encoded differently:\n%s", diff)
	}
}

func TestEncode(t *testing.T) {
	m := newTestMapper(t, WithRecord[inner]())
	u, _ := url.Parse("https://example.com/x")
	when := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "int", in: 42, want: "42"},
		{name: "named int", in: time.Duration(5), want: "5"},
		{name: "float", in: float32(0.5), want: "0.5"},
		{name: "slice of records", in: []inner{{Value: 1, Label: "a"}}, want: "[{Value: 1, Label: a}]"},
		{name: "map", in: map[string]int{"z": 1, "w": 2}, want: "{w: 2, z: 1}"},
		{name: "registry codec", in: u, want: "https://example.com/x"},
		{
			name: "time",
			in:   when,
			want: "{year: 2024, month: 3, day-of-month: 1, hours: 12, minutes: 0, seconds: 0, nano: 0}",
		},
		{name: "unregistered struct", in: simple{FieldTest: 1, Text: "t"}, want: "{FieldTest: 1, Text: t}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if diff := cmp.Diff(yamlNode(t, tt.want), got); diff != "" {
				t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := m.Encode(nil); !errors.Is(err, ErrNullValue) {
		t.Errorf("Encode(nil) error = %v, want ErrNullValue", err)
	}
	if _, err := m.Encode([]int(nil)); !errors.Is(err, ErrNullValue) {
		t.Errorf("Encode(nil slice) error = %v, want ErrNullValue", err)
	}
	if _, err := m.Encode(map[int]string{1: "a"}); !errors.Is(err, ErrCodecNotFound) {
		t.Errorf("Encode(map[int]string) error = %v, want ErrCodecNotFound", err)
	}
}

func TestSerializeCodecPrecedence(t *testing.T) {
	in := reading{Temp: celsius{deg: 21.5}, Log: []celsius{{deg: 1}, {deg: 2.5}}}

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{
			name: "mapper codecs",
			opts: []Option{
				WithCodecs(codec.MustRegistry(celsiusNumber())),
				WithRecord[reading](),
			},
			want: "{Temp: 21.5, Log: [1.0, 2.5]}",
		},
		{
			name: "local codecs win over mapper codecs",
			opts: []Option{
				WithCodecs(codec.MustRegistry(celsiusNumber())),
				WithRecord[reading](LocalCodecs(celsiusText())),
			},
			want: "{Temp: 21.5C, Log: [1C, 2.5C]}",
		},
		{
			name: "field codec wins over local codecs",
			opts: []Option{
				WithRecord[reading](
					LocalCodecs(celsiusText()),
					FieldCodec("Temp", celsiusNumber()),
				),
			},
			want: "{Temp: 21.5, Log: [1C, 2.5C]}",
		},
		{
			name: "field codec applies to elements",
			opts: []Option{
				WithCodecs(codec.MustRegistry(celsiusNumber())),
				WithRecord[reading](FieldCodec("Log", celsiusText())),
			},
			want: "{Temp: 21.5, Log: [1C, 2.5C]}",
		},
		{
			name: "field codec wins over a designated constructor",
			opts: []Option{
				WithRecord[celsius](),
				WithRecord[reading](FieldCodec("Temp", celsiusNumber())),
			},
			want: "{Temp: 21.5, Log: [{deg: 1.0}, {deg: 2.5}]}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t, tt.opts...)
			got, err := m.Serialize(in)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			if diff := cmp.Diff(yamlNode(t, tt.want), got); diff != "" {
				t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
			}

			out, err := Decode[reading](m, got)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(in, out, cmp.AllowUnexported(celsius{})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldCodecBehindPointer(t *testing.T) {
	m := newTestMapper(t,
		WithRecord[celsius](),
		WithRecord[optionalReading](
			FieldCodec("Temp", celsiusNumber()),
			FieldCodec("Log", celsiusText()),
		),
	)
	in := optionalReading{Temp: &celsius{deg: 21.5}, Log: []*celsius{{deg: 1}, nil}}

	got, err := m.Serialize(in)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if diff := cmp.Diff(yamlNode(t, "{Temp: 21.5, Log: [1C, null]}"), got); diff != "" {
		t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
	}

	out, err := Decode[optionalReading](m, got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(in, out, cmp.AllowUnexported(celsius{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldCodecOnInterface(t *testing.T) {
	m := newTestMapper(t, WithRecord[looseReading](FieldCodec("Temp", celsiusText())))
	in := looseReading{Temp: celsius{deg: 2}}

	got, err := m.Serialize(in)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if diff := cmp.Diff(yamlNode(t, "{Temp: 2C}"), got); diff != "" {
		t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
	}

	out, err := Decode[looseReading](m, got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(in, out, cmp.AllowUnexported(celsius{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	out, err = Decode[looseReading](m, yamlNode(t, "{Temp: null}"))
	if err != nil || out.Temp != nil {
		t.Errorf("Decode(null) = %v, %v, want nil Temp", out, err)
	}
}

func TestUintptrIsALeaf(t *testing.T) {
	type handle struct {
		P uintptr
	}
	m := newTestMapper(t, WithRecord[handle]())
	got, err := m.Serialize(handle{P: 7})
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if diff := cmp.Diff(yamlNode(t, "{P: 7}"), got); diff != "" {
		t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
	}
	out, err := Decode[handle](m, got)
	if err != nil || out.P != 7 {
		t.Errorf("Decode() = %v, %v, want {P: 7}", out, err)
	}
	if _, err := Decode[handle](m, yamlNode(t, "{P: -1}")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Decode(-1) error = %v, want ErrTypeMismatch", err)
	}
}

func TestSerializeLocalCodecsReachNestedRecords(t *testing.T) {
	type station struct {
		Name    string
		Reading reading
	}
	m := newTestMapper(t,
		WithCodecs(codec.MustRegistry(celsiusNumber())),
		WithRecord[station](LocalCodecs(celsiusText())),
		WithRecord[reading](),
	)
	n, err := m.Serialize(station{Name: "s", Reading: reading{Temp: celsius{deg: 4}}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(yamlNode(t, "{Name: s, Reading: {Temp: 4C, Log: null}}"), n); diff != "" {
		t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
	}

	// outside station the mapper's codecs apply again
	n, err = m.Serialize(reading{Temp: celsius{deg: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if got := ir.Get(n, "Temp"); got.Type != ir.NumberType {
		t.Errorf("Temp = %v, want a number", ir.ToAny(got))
	}
}

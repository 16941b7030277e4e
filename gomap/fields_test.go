package gomap

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fieldSummary struct {
	Name     string
	Key      string
	Type     string
	Index    []int
	Exported bool
}

func summarize(fds []FieldDescriptor) []fieldSummary {
	res := make([]fieldSummary, len(fds))
	for i, f := range fds {
		res[i] = fieldSummary{
			Name:     f.Name,
			Key:      f.Key,
			Type:     f.Type.String(),
			Index:    f.Index,
			Exported: f.Exported,
		}
	}
	return res
}

func TestFields(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		name string
		typ  reflect.Type
		want []fieldSummary
	}{
		{
			name: "rename and exclusion",
			typ:  reflect.TypeFor[listener](),
			want: []fieldSummary{
				{Name: "Host", Key: "hostname", Type: "string", Index: []int{0}, Exported: true},
				{Name: "Port", Key: "Port", Type: "int", Index: []int{1}, Exported: true},
			},
		},
		{
			name: "pointer to record",
			typ:  reflect.TypeFor[*simple](),
			want: []fieldSummary{
				{Name: "FieldTest", Key: "FieldTest", Type: "int", Index: []int{0}, Exported: true},
				{Name: "Text", Key: "Text", Type: "string", Index: []int{1}, Exported: true},
			},
		},
		{
			name: "embedded fields come after own fields",
			typ:  reflect.TypeFor[derived](),
			want: []fieldSummary{
				{Name: "testing", Key: "testing", Type: "bool", Index: []int{0}},
				{Name: "test", Key: "test", Type: "bool", Index: []int{1, 0}},
			},
		},
		{
			name: "embedded pointer",
			typ:  reflect.TypeFor[withPtrBase](),
			want: []fieldSummary{
				{Name: "Name", Key: "Name", Type: "string", Index: []int{0}, Exported: true},
				{Name: "test", Key: "test", Type: "bool", Index: []int{1, 0}},
			},
		},
		{
			name: "excluded embedded struct",
			typ:  reflect.TypeFor[hidden](),
			want: []fieldSummary{
				{Name: "Name", Key: "Name", Type: "string", Index: []int{0}, Exported: true},
			},
		},
		{
			name: "renamed embedded struct is a field",
			typ:  reflect.TypeFor[namedBase](),
			want: []fieldSummary{
				{Name: "Name", Key: "Name", Type: "string", Index: []int{0}, Exported: true},
				{Name: "base", Key: "inner", Type: "gomap.base", Index: []int{1}},
			},
		},
		{
			name: "empty record",
			typ:  reflect.TypeFor[struct{}](),
			want: []fieldSummary{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Fields(tt.typ)
			if err != nil {
				t.Fatalf("Fields() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, summarize(got)); diff != "" {
				t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldsDeterministic(t *testing.T) {
	m := newTestMapper(t)
	a, err := m.Fields(reflect.TypeFor[outer]())
	if err != nil {
		t.Fatal(err)
	}
	// callers own the returned slice
	a[0].Key = "changed"
	b, err := m.Fields(reflect.TypeFor[outer]())
	if err != nil {
		t.Fatal(err)
	}
	if b[0].Key != "Name" {
		t.Errorf("Fields() returned shared descriptors: Key = %q", b[0].Key)
	}
}

func TestFieldsBindings(t *testing.T) {
	m := newTestMapper(t,
		WithRecord[drawing](FieldHint("Main", reflect.TypeFor[circle]())),
		WithRecord[reading](FieldCodec("Temp", celsiusText())),
	)

	fds, err := m.Fields(reflect.TypeFor[drawing]())
	if err != nil {
		t.Fatal(err)
	}
	if got := fds[1].Hint; got != reflect.TypeFor[circle]() {
		t.Errorf("Main hint = %v, want circle", got)
	}
	if fds[0].Hint != nil {
		t.Errorf("Shapes hint = %v, want none", fds[0].Hint)
	}

	fds, err = m.Fields(reflect.TypeFor[reading]())
	if err != nil {
		t.Fatal(err)
	}
	if fds[0].Codec == nil || fds[1].Codec != nil {
		t.Errorf("codec bound to wrong field: Temp=%v Log=%v", fds[0].Codec, fds[1].Codec)
	}
}

func TestFieldsErrors(t *testing.T) {
	m := newTestMapper(t)
	_, err := m.Fields(reflect.TypeFor[int]())
	var te *TypeError
	if !errors.As(err, &te) {
		t.Errorf("Fields(int) error = %v, want *TypeError", err)
	}

	type badTag struct {
		A int `config:"bogus"`
	}
	if _, err := m.Fields(reflect.TypeFor[badTag]()); err == nil {
		t.Errorf("Fields() accepted an unknown tag option")
	}
}

func TestFieldsTagKey(t *testing.T) {
	type custom struct {
		A int `cfg:"name=a" config:"-"`
	}
	fds, err := newTestMapper(t, WithTagKey("cfg")).Fields(reflect.TypeFor[custom]())
	if err != nil {
		t.Fatal(err)
	}
	if len(fds) != 1 || fds[0].Key != "a" {
		t.Errorf("Fields() with tag key cfg = %+v", summarize(fds))
	}
}

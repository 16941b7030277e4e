package gomap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/signadot/confmap/codec"
	"github.com/signadot/confmap/ir"
)

type simple struct {
	FieldTest int
	Text      string
}

func newSimple(fieldTest int, text string) simple {
	return simple{FieldTest: fieldTest, Text: text}
}

type listener struct {
	Host  string `config:"name=hostname"`
	Port  int
	token string `config:"-"`
}

func newListener(host string, port int) *listener {
	return &listener{Host: host, Port: port, token: "from-constructor"}
}

type base struct {
	test bool
}

type derived struct {
	testing bool
	base
}

type withPtrBase struct {
	Name string
	*base
}

type hidden struct {
	Name string
	base `config:"-"`
}

type namedBase struct {
	Name string
	base `config:"name=inner"`
}

type inner struct {
	Value int
	Label string
}

type outer struct {
	Name  string
	Inner inner
	Items []inner
	Ptr   *inner
	Tags  map[string]string
}

type shape interface {
	Area() float64
}

type square struct {
	Side float64
}

func (s square) Area() float64 { return s.Side * s.Side }

type circle struct {
	Radius float64
}

func (c *circle) Area() float64 { return 3 * c.Radius * c.Radius }

type drawing struct {
	Shapes []shape
	Main   shape
	Extra  any
}

type celsius struct {
	deg float64
}

type reading struct {
	Temp celsius
	Log  []celsius
}

type optionalReading struct {
	Temp *celsius
	Log  []*celsius
}

type looseReading struct {
	Temp any
}

// celsiusNumber encodes celsius as a plain number.
func celsiusNumber() codec.Codec {
	return codec.Of(
		func(c celsius) (*ir.Node, error) {
			return ir.FromFloat(c.deg), nil
		},
		func(n *ir.Node) (celsius, error) {
			switch {
			case n.Type != ir.NumberType:
				return celsius{}, fmt.Errorf("%w: celsius expects a number", codec.ErrInvalid)
			case n.Int64 != nil:
				return celsius{deg: float64(*n.Int64)}, nil
			default:
				return celsius{deg: *n.Float64}, nil
			}
		},
	)
}

// celsiusText encodes celsius as text like "21.5C".
func celsiusText() codec.Codec {
	return codec.Of(
		func(c celsius) (*ir.Node, error) {
			return ir.FromString(strconv.FormatFloat(c.deg, 'g', -1, 64) + "C"), nil
		},
		func(n *ir.Node) (celsius, error) {
			if n.Type != ir.StringType || !strings.HasSuffix(n.String, "C") {
				return celsius{}, fmt.Errorf("%w: celsius expects text like 21C", codec.ErrInvalid)
			}
			f, err := strconv.ParseFloat(strings.TrimSuffix(n.String, "C"), 64)
			if err != nil {
				return celsius{}, fmt.Errorf("%w: %w", codec.ErrInvalid, err)
			}
			return celsius{deg: f}, nil
		},
	)
}

type positive struct {
	Count int
}

var errNotPositive = errors.New("not positive")

func newPositive(n int) (positive, error) {
	if n <= 0 {
		return positive{}, errNotPositive
	}
	return positive{Count: n}, nil
}

type narrow struct {
	Width int64
}

func newNarrow(n int8) narrow {
	return narrow{Width: int64(n)}
}

type chain struct {
	Name string
	Next *chain
}

type unsupported struct {
	Name string
	C    chan int
}

// yamlNode parses src as YAML and converts it to a node.
func yamlNode(t *testing.T, src string) *ir.Node {
	t.Helper()
	var v any
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	n, err := ir.FromAny(v)
	if err != nil {
		t.Fatalf("ir.FromAny: %v", err)
	}
	return n
}

func newTestMapper(t *testing.T, opts ...Option) *Mapper {
	t.Helper()
	m, err := NewMapper(opts...)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	return m
}

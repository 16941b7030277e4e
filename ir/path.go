package ir

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Path is a parsed field path such as servers[2].port. The empty path
// is the root. Fields holding any of the characters ' . [ ] are quoted
// with single quotes, with \' escaping a quote.
type Path struct {
	Index *int
	Field *string
	Next  *Path
}

func (p *Path) String() string {
	buf := bytes.NewBuffer(nil)
	for x := p; x != nil; x = x.Next {
		switch {
		case x.Field != nil:
			if buf.Len() != 0 {
				buf.WriteByte('.')
			}
			buf.WriteString(pathString(*x.Field))
		case x.Index != nil:
			fmt.Fprintf(buf, "[%d]", *x.Index)
		}
	}
	return buf.String()
}

// AppendField returns path extended by the object key field.
func AppendField(path, field string) string {
	if path == "" {
		return pathString(field)
	}
	return path + "." + pathString(field)
}

// AppendIndex returns path extended by the array index i.
func AppendIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func pathString(f string) string {
	if f != "" && strings.IndexAny(f, "'.[]") == -1 {
		return f
	}
	return "'" + strings.ReplaceAll(f, "'", "\\'") + "'"
}

func ParsePath(p string) (*Path, error) {
	if p == "" {
		return nil, nil
	}
	root := &Path{}
	if p[0] == '[' {
		if err := parseFrag(p, root); err != nil {
			return nil, fmt.Errorf("path %q: %w", p, err)
		}
		return root, nil
	}
	if err := parseFrag("."+p, root); err != nil {
		return nil, fmt.Errorf("path %q: %w", p, err)
	}
	return root, nil
}

func parseFrag(frag string, parent *Path) error {
	var rest string
	switch frag[0] {
	case '.':
		field, r, err := parseField(frag[1:])
		if err != nil {
			return err
		}
		parent.Field = &field
		rest = r
	case '[':
		i := strings.IndexByte(frag[1:], ']')
		if i == -1 {
			return fmt.Errorf("expected '[' <index> ']'")
		}
		u64, err := strconv.ParseUint(frag[1:i+1], 10, 31)
		if err != nil {
			return fmt.Errorf("bad index %q", frag[1:i+1])
		}
		index := int(u64)
		parent.Index = &index
		rest = frag[i+2:]
	default:
		return fmt.Errorf("expected '.' or '['")
	}
	if rest == "" {
		return nil
	}
	next := &Path{}
	if err := parseFrag(rest, next); err != nil {
		return err
	}
	parent.Next = next
	return nil
}

func parseField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("expected field at end of string")
	}
	if frag[0] != '\'' {
		i := strings.IndexAny(frag, ".[")
		if i == 0 {
			return "", "", fmt.Errorf("empty field")
		}
		if i == -1 {
			return frag, "", nil
		}
		return frag[:i], frag[i:], nil
	}
	escaped := false
	res := make([]byte, 0, len(frag))
	for i := 1; i < len(frag); i++ {
		c := frag[i]
		switch {
		case c == '\\' && !escaped:
			escaped = true
		case c == '\'' && !escaped:
			return string(res), frag[i+1:], nil
		default:
			escaped = false
			res = append(res, c)
		}
	}
	return "", "", fmt.Errorf("end of string scanning for \"'\"")
}

// GetPath returns the node at path below y, looking object keys up the
// way GetFold does. A path that names a missing key or index yields nil
// and no error; stepping into a node of the wrong type is an error.
func (y *Node) GetPath(path string) (*Node, error) {
	yp, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	res := y
	for ; yp != nil; yp = yp.Next {
		switch {
		case yp.Index != nil:
			if res.Type != ArrayType {
				return nil, fmt.Errorf("%s: expected array, got %s", yp, res.Type)
			}
			index := *yp.Index
			if index >= len(res.Values) {
				return nil, nil
			}
			res = res.Values[index]
		case yp.Field != nil:
			if res.Type != ObjectType {
				return nil, fmt.Errorf("%s: expected object, got %s", yp, res.Type)
			}
			v, ok := GetFold(res, *yp.Field)
			if !ok {
				return nil, nil
			}
			res = v
		}
	}
	return res, nil
}

package gomap

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultTagKey is the struct tag key read for field options.
const DefaultTagKey = "config"

// fieldTag holds the options of one struct field's tag.
type fieldTag struct {
	// Name renames the field's key in the encoded form.
	Name string
	// Exclude drops the field from both directions of mapping.
	Exclude bool
}

// ParseStructTag parses a struct tag string and returns a map of key-value pairs.
// Handles comma-separated values: `config:"key1=value1,key2=value2,flag"`
// Supports quoted values with spaces: `config:"key='value with spaces'"`
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)

	if tag == "" {
		return result, nil
	}

	var parts []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false

	for i := 0; i < len(tag); i++ {
		char := tag[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			current.WriteByte(char)
		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			current.WriteByte(char)
		case (char == ',' || char == ' ') && !inSingleQuote && !inDoubleQuote:
			if part := strings.TrimSpace(current.String()); part != "" {
				parts = append(parts, part)
			}
			current.Reset()
		default:
			current.WriteByte(char)
		}
	}
	if inSingleQuote || inDoubleQuote {
		return nil, fmt.Errorf("invalid tag: unterminated quote in %q", tag)
	}
	if part := strings.TrimSpace(current.String()); part != "" {
		parts = append(parts, part)
	}

	for _, part := range parts {
		if idx := strings.Index(part, "="); idx >= 0 {
			key := strings.TrimSpace(part[:idx])
			if key == "" {
				return nil, fmt.Errorf("invalid tag: empty key in %q", part)
			}
			result[key] = unquoteValue(strings.TrimSpace(part[idx+1:]))
		} else {
			result[part] = ""
		}
	}

	return result, nil
}

// unquoteValue removes surrounding single or double quotes from a value.
func unquoteValue(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// parseFieldTag reads the options under key from sf's tag.
func parseFieldTag(sf reflect.StructField, key string) (fieldTag, error) {
	var res fieldTag
	raw, ok := sf.Tag.Lookup(key)
	if !ok {
		return res, nil
	}
	parsed, err := ParseStructTag(raw)
	if err != nil {
		return res, err
	}
	for k, v := range parsed {
		switch k {
		case "-", "exclude":
			res.Exclude = true
		case "name":
			if v == "" {
				return res, fmt.Errorf("invalid tag on %s: name requires a value", sf.Name)
			}
			res.Name = v
		default:
			return res, fmt.Errorf("invalid tag on %s: unknown option %q", sf.Name, k)
		}
	}
	return res, nil
}

// Package yaml bridges YAML text and the value model using goccy/go-yaml.
// Decoding honors only the first document of a stream and narrows YAML's
// richer scalar set onto the value model: every null spelling becomes Null,
// timestamps become RFC 3339 strings, and non-string mapping keys are
// stringified. The narrowing is lossy and happens once, at ingestion.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/dmorlim/jqr/internal/value"
)

// ParseError reports malformed YAML input.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "invalid YAML: " + e.Message
}

// Parse decodes the first YAML document into a Value tree. Additional
// documents in the stream are ignored. An empty input is the null document.
func Parse(data []byte) (value.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.UseOrderedMap())

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return value.Null(), nil
		}
		return value.Value{}, &ParseError{Message: yaml.FormatError(err, false, false)}
	}

	return fromYAML(doc), nil
}

func fromYAML(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(t)
	case int:
		return value.Int(int64(t))
	case int64:
		return value.Int(t)
	case uint64:
		if t > math.MaxInt64 {
			return value.Float(float64(t))
		}
		return value.Int(int64(t))
	case float64:
		return value.Float(t)
	case string:
		return value.String(t)
	case time.Time:
		return value.String(t.Format(time.RFC3339))
	case []any:
		items := make([]value.Value, len(t))
		for i, item := range t {
			items[i] = fromYAML(item)
		}
		return value.Sequence(items...)
	case yaml.MapSlice:
		entries := make([]value.Entry, 0, len(t))
		for _, item := range t {
			entries = append(entries, value.Entry{
				Key:   mappingKey(item.Key),
				Value: fromYAML(item.Value),
			})
		}
		return value.Mapping(entries...)
	default:
		// Remaining exotic scalars narrow to their textual form.
		return value.String(fmt.Sprint(t))
	}
}

func mappingKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// Encode serializes a Value as block-style YAML with two-space indentation.
// Mapping key order and sequence order are preserved; goccy quotes strings
// that would otherwise be read back as null, bool or number scalars.
func Encode(v value.Value) ([]byte, error) {
	payload, err := yaml.Marshal(toYAML(v))
	if err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return payload, nil
}

func toYAML(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.BoolValue()
	case value.KindNumber:
		n := v.NumberValue()
		if n.IsInt() {
			return n.Int64()
		}
		return n.Float64()
	case value.KindString:
		return v.StringValue()
	case value.KindSequence:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toYAML(item)
		}
		return out
	case value.KindMapping:
		entries := v.Entries()
		out := make(yaml.MapSlice, 0, len(entries))
		for _, e := range entries {
			out = append(out, yaml.MapItem{Key: e.Key, Value: toYAML(e.Value)})
		}
		return out
	default:
		return nil
	}
}

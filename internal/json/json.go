// Package json bridges JSON text and the value model. Decoding walks the
// token stream instead of unmarshalling into maps, which keeps mapping key
// order and the integer-vs-decimal distinction of numeric literals.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dmorlim/jqr/internal/value"
)

// ParseError reports malformed JSON input with the byte offset of the fault.
type ParseError struct {
	Message string
	Offset  int64
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("invalid JSON at offset %d: %s", e.Offset, e.Message)
	}
	return "invalid JSON: " + e.Message
}

// ConversionError reports a Value that JSON cannot represent, such as NaN or
// an infinity produced by a YAML document.
type ConversionError struct {
	Message string
}

func (e *ConversionError) Error() string {
	return "value not representable in JSON: " + e.Message
}

// Parse decodes a single well-formed JSON document into a Value tree.
// Mapping key order follows the source text; duplicate keys keep the first
// position with the last value winning.
func Parse(data []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return value.Value{}, &ParseError{Message: "empty input"}
	}
	if err != nil {
		return value.Value{}, wrapSyntax(err, dec)
	}

	v, err := decodeValue(dec, tok)
	if err != nil {
		return value.Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return value.Value{}, wrapSyntax(err, dec)
		}
		return value.Value{}, &ParseError{Message: "unexpected content after document", Offset: dec.InputOffset()}
	}

	return v, nil
}

func wrapSyntax(err error, dec *json.Decoder) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return &ParseError{Message: syn.Error(), Offset: syn.Offset}
	}
	return &ParseError{Message: err.Error(), Offset: dec.InputOffset()}
}

func decodeValue(dec *json.Decoder, tok json.Token) (value.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		default:
			return value.Value{}, &ParseError{Message: fmt.Sprintf("unexpected %q", t.String()), Offset: dec.InputOffset()}
		}
	case string:
		return value.String(t), nil
	case json.Number:
		n, ok := value.NumberFromLiteral(t.String())
		if !ok {
			return value.Value{}, &ParseError{Message: "invalid number literal " + t.String(), Offset: dec.InputOffset()}
		}
		return value.Num(n), nil
	case bool:
		return value.Bool(t), nil
	case nil:
		return value.Null(), nil
	default:
		return value.Value{}, &ParseError{Message: fmt.Sprintf("unexpected token %v", tok), Offset: dec.InputOffset()}
	}
}

func decodeMapping(dec *json.Decoder) (value.Value, error) {
	var entries []value.Entry
	for {
		tok, err := dec.Token()
		if err != nil {
			return value.Value{}, wrapSyntax(err, dec)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return value.Mapping(entries...), nil
		}

		key, ok := tok.(string)
		if !ok {
			return value.Value{}, &ParseError{Message: "object key must be a string", Offset: dec.InputOffset()}
		}

		valTok, err := dec.Token()
		if err != nil {
			return value.Value{}, wrapSyntax(err, dec)
		}
		child, err := decodeValue(dec, valTok)
		if err != nil {
			return value.Value{}, err
		}
		entries = append(entries, value.Entry{Key: key, Value: child})
	}
}

func decodeSequence(dec *json.Decoder) (value.Value, error) {
	items := make([]value.Value, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return value.Value{}, wrapSyntax(err, dec)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return value.Sequence(items...), nil
		}
		child, err := decodeValue(dec, tok)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, child)
	}
}

// Encode serializes a Value as compact JSON. Mapping key order is emitted as
// stored, never re-sorted.
func Encode(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 0, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeIndent serializes a Value as two-space indented JSON.
func EncodeIndent(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 0, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const indentUnit = "  "

func encode(buf *bytes.Buffer, v value.Value, level int, pretty bool) error {
	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		if v.BoolValue() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case value.KindNumber:
		return encodeNumber(buf, v.NumberValue())
	case value.KindString:
		return encodeString(buf, v.StringValue())
	case value.KindSequence:
		return encodeSequenceValue(buf, v, level, pretty)
	case value.KindMapping:
		return encodeMappingValue(buf, v, level, pretty)
	}
	return nil
}

func encodeNumber(buf *bytes.Buffer, n value.Number) error {
	if !n.IsInt() {
		f := n.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &ConversionError{Message: n.Literal()}
		}
	}
	buf.WriteString(n.Literal())
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	// encoding/json handles escaping; it cannot fail for a string input.
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func encodeSequenceValue(buf *bytes.Buffer, v value.Value, level int, pretty bool) error {
	items := v.Items()
	if len(items) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if pretty {
			writeIndent(buf, level+1)
		}
		if err := encode(buf, item, level+1, pretty); err != nil {
			return err
		}
	}
	if pretty {
		writeIndent(buf, level)
	}
	buf.WriteByte(']')
	return nil
}

func encodeMappingValue(buf *bytes.Buffer, v value.Value, level int, pretty bool) error {
	entries := v.Entries()
	if len(entries) == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if pretty {
			writeIndent(buf, level+1)
		}
		if err := encodeString(buf, e.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if pretty {
			buf.WriteByte(' ')
		}
		if err := encode(buf, e.Value, level+1, pretty); err != nil {
			return err
		}
	}
	if pretty {
		writeIndent(buf, level)
	}
	buf.WriteByte('}')
	return nil
}

func writeIndent(buf *bytes.Buffer, level int) {
	buf.WriteByte('\n')
	for i := 0; i < level; i++ {
		buf.WriteString(indentUnit)
	}
}

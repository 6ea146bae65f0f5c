// Package value defines the unified in-memory tree shared by the JSON and
// YAML bridges. A Value is a closed tagged union over six kinds; mappings
// preserve insertion order and keep keys unique. Values are plain data:
// bridges construct them, the query engine only reads them.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Entry is one ordered key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value
}

// Value is the single recursive entity of the system.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  string
	seq  []Value
	mp   []Entry
}

// Number keeps the canonical literal alongside its parsed form so that a
// literal without a fraction or exponent round-trips as an integer.
type Number struct {
	lit   string
	isInt bool
	i     int64
	f     float64
}

// IsInt reports whether the number originated from an integer literal.
func (n Number) IsInt() bool { return n.isInt }

// Int64 returns the integer form; only meaningful when IsInt is true.
func (n Number) Int64() int64 { return n.i }

// Float64 returns the numeric value as a float regardless of origin.
func (n Number) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// Literal returns the canonical textual form of the number.
func (n Number) Literal() string { return n.lit }

// IntNumber builds an integer Number.
func IntNumber(i int64) Number {
	return Number{lit: strconv.FormatInt(i, 10), isInt: true, i: i}
}

// FloatNumber builds a floating Number. The literal always carries a
// fraction or exponent so it re-parses as a float.
func FloatNumber(f float64) Number {
	lit := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(lit, ".eE") && !strings.ContainsAny(lit, "nNiI") {
		lit += ".0"
	}
	return Number{lit: lit, f: f}
}

// NumberFromLiteral parses a numeric literal, classifying it as integer when
// it has no fraction or exponent part. Integer literals that overflow int64
// fall back to the floating form.
func NumberFromLiteral(lit string) (Number, bool) {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Number{lit: lit, isInt: true, i: i}, true
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Number{}, false
	}
	return Number{lit: lit, f: f}, true
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer-number Value.
func Int(i int64) Value { return Value{kind: KindNumber, num: IntNumber(i)} }

// Float returns a floating-number Value.
func Float(f float64) Value { return Value{kind: KindNumber, num: FloatNumber(f)} }

// Num wraps a Number into a Value.
func Num(n Number) Value { return Value{kind: KindNumber, num: n} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Sequence returns an ordered sequence Value.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, seq: items}
}

// Mapping builds an ordered mapping from entries, applying last-write-wins
// on duplicate keys while keeping the key's first position.
func Mapping(entries ...Entry) Value {
	m := Value{kind: KindMapping, mp: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		m.set(e.Key, e.Value)
	}
	return m
}

func (v *Value) set(key string, val Value) {
	for i := range v.mp {
		if v.mp[i].Key == key {
			v.mp[i].Value = val
			return
		}
	}
	v.mp = append(v.mp, Entry{Key: key, Value: val})
}

// Kind reports the variant held by the Value.
func (v Value) Kind() Kind { return v.kind }

// IsScalar reports whether the Value is not a container.
func (v Value) IsScalar() bool {
	return v.kind != KindSequence && v.kind != KindMapping
}

// BoolValue returns the boolean form; only meaningful for KindBool.
func (v Value) BoolValue() bool { return v.b }

// NumberValue returns the Number form; only meaningful for KindNumber.
func (v Value) NumberValue() Number { return v.num }

// StringValue returns the string form; only meaningful for KindString.
func (v Value) StringValue() string { return v.str }

// Get selects the mapping entry with the given key.
// The second return is false when the Value is not a mapping or the key is
// absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	for _, e := range v.mp {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Index selects the i-th sequence element. Negative indices count from the
// end. Out-of-range indices and non-sequence receivers report false.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence {
		return Value{}, false
	}
	if i < 0 {
		i += len(v.seq)
	}
	if i < 0 || i >= len(v.seq) {
		return Value{}, false
	}
	return v.seq[i], true
}

// Len returns the number of children of a container, or zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.mp)
	default:
		return 0
	}
}

// Items returns the ordered elements of a sequence. The caller must not
// mutate the returned slice.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Entries returns the ordered key/value pairs of a mapping. The caller must
// not mutate the returned slice.
func (v Value) Entries() []Entry {
	if v.kind != KindMapping {
		return nil
	}
	return v.mp
}

// Children returns all immediate children in order: mapping values in
// insertion order, or sequence elements. Scalars have none.
func (v Value) Children() []Value {
	switch v.kind {
	case KindSequence:
		return v.seq
	case KindMapping:
		out := make([]Value, len(v.mp))
		for i, e := range v.mp {
			out[i] = e.Value
		}
		return out
	default:
		return nil
	}
}

// Equal reports structural equality. Containers compare element-wise in
// order; numbers compare numerically, so an integer equals a float of the
// same magnitude.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return numberEqual(v.num, other.num)
	case KindString:
		return v.str == other.str
	case KindSequence:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.mp) != len(other.mp) {
			return false
		}
		for i := range v.mp {
			if v.mp[i].Key != other.mp[i].Key || !v.mp[i].Value.Equal(other.mp[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numberEqual(a, b Number) bool {
	if a.isInt && b.isInt {
		return a.i == b.i
	}
	return a.Float64() == b.Float64()
}

package jsonpath

import (
	"github.com/dmorlim/jqr/internal/value"
)

// selector selects zero or more children of a node, appending them to dst in
// document order.
type selector interface {
	apply(v value.Value, dst []value.Value) []value.Value
}

type (
	nameSel     string
	wildcardSel struct{}
	indexSel    int
)

// sliceSel bounds are nil when absent; negative bounds and steps follow the
// usual slice normalization against the sequence length.
type sliceSel struct {
	start, end, step *int
}

type filterSel struct {
	path   []string // field path after '@'; empty means the child itself
	cmp    comparison
	exists bool // true for existence checks like [?(@.isbn)]
}

func (n nameSel) apply(v value.Value, dst []value.Value) []value.Value {
	if child, ok := v.Get(string(n)); ok {
		dst = append(dst, child)
	}
	return dst
}

func (wildcardSel) apply(v value.Value, dst []value.Value) []value.Value {
	return append(dst, v.Children()...)
}

func (i indexSel) apply(v value.Value, dst []value.Value) []value.Value {
	if child, ok := v.Index(int(i)); ok {
		dst = append(dst, child)
	}
	return dst
}

func (s sliceSel) apply(v value.Value, dst []value.Value) []value.Value {
	if v.Kind() != value.KindSequence {
		return dst
	}
	n := v.Len()

	step := 1
	if s.step != nil {
		step = *s.step
	}

	var start, end int
	if step > 0 {
		start, end = 0, n
	} else {
		start, end = n-1, -1
	}
	if s.start != nil {
		start = clampIndex(normalizeIndex(*s.start, n), n, step)
	}
	if s.end != nil {
		end = clampIndex(normalizeIndex(*s.end, n), n, step)
	}

	items := v.Items()
	if step > 0 {
		for i := start; i < end; i += step {
			dst = append(dst, items[i])
		}
	} else {
		for i := start; i > end; i += step {
			dst = append(dst, items[i])
		}
	}
	return dst
}

func normalizeIndex(idx, length int) int {
	if idx < 0 {
		return length + idx
	}
	return idx
}

func clampIndex(idx, length, step int) int {
	if step > 0 {
		return max(0, min(idx, length))
	}
	return max(-1, min(idx, length-1))
}

func (f filterSel) apply(v value.Value, dst []value.Value) []value.Value {
	for _, child := range v.Children() {
		if f.matches(child) {
			dst = append(dst, child)
		}
	}
	return dst
}

func (f filterSel) matches(child value.Value) bool {
	target, ok := f.resolve(child)
	if f.exists {
		return ok
	}
	if !ok {
		return false
	}
	return f.compare(target)
}

func (f filterSel) resolve(child value.Value) (value.Value, bool) {
	current := child
	for _, field := range f.path {
		next, ok := current.Get(field)
		if !ok {
			return value.Value{}, false
		}
		current = next
	}
	return current, true
}

// compare evaluates the comparison against the resolved target. Kinds only
// compare against their own kind; a mismatch is "no match", not an error.
func (f filterSel) compare(target value.Value) bool {
	switch f.cmp.kind {
	case litNum:
		return f.compareNumber(target)
	case litStr:
		return f.compareString(target)
	case litBool:
		return f.compareBool(target)
	case litNull:
		return f.compareNull(target)
	case litRegex:
		return f.compareRegex(target)
	case litArray:
		return f.compareArray(target)
	default:
		return false
	}
}

func (f filterSel) compareNumber(target value.Value) bool {
	if target.Kind() != value.KindNumber {
		return false
	}
	v := target.NumberValue().Float64()

	switch f.cmp.op {
	case "==":
		return v == f.cmp.num
	case "!=":
		return v != f.cmp.num
	case "<":
		return v < f.cmp.num
	case "<=":
		return v <= f.cmp.num
	case ">":
		return v > f.cmp.num
	case ">=":
		return v >= f.cmp.num
	}
	return false
}

func (f filterSel) compareString(target value.Value) bool {
	if target.Kind() != value.KindString {
		return false
	}
	switch f.cmp.op {
	case "==":
		return target.StringValue() == f.cmp.str
	case "!=":
		return target.StringValue() != f.cmp.str
	}
	return false
}

func (f filterSel) compareBool(target value.Value) bool {
	if target.Kind() != value.KindBool {
		return false
	}
	switch f.cmp.op {
	case "==":
		return target.BoolValue() == f.cmp.b
	case "!=":
		return target.BoolValue() != f.cmp.b
	}
	return false
}

func (f filterSel) compareNull(target value.Value) bool {
	isNull := target.Kind() == value.KindNull
	switch f.cmp.op {
	case "==":
		return isNull
	case "!=":
		return !isNull
	}
	return false
}

func (f filterSel) compareRegex(target value.Value) bool {
	if target.Kind() != value.KindString {
		return false
	}
	m := f.cmp.regex.MatchString(target.StringValue())
	switch f.cmp.op {
	case "=~":
		return m
	case "!~":
		return !m
	}
	return false
}

func (f filterSel) compareArray(target value.Value) bool {
	found := false
	for _, item := range f.cmp.arr {
		if target.Equal(item) {
			found = true
			break
		}
	}
	switch f.cmp.op {
	case "in":
		return found
	case "nin":
		return !found
	}
	return false
}

package jsonpath

import (
	"github.com/dmorlim/jqr/internal/value"
)

// Path is a compiled path expression, safe for reuse across documents.
type Path struct {
	expr string
	segs []segment
}

// Compile parses a path expression into its segment sequence. It returns an
// error wrapping ErrSyntax or ErrNotSupported for malformed or unsupported
// expressions; a compiled Path never fails during evaluation.
func Compile(expr string) (*Path, error) {
	segs, err := compile(expr)
	if err != nil {
		return nil, err
	}
	return &Path{expr: expr, segs: segs}, nil
}

// String returns the original expression.
func (p *Path) String() string { return p.expr }

// Select evaluates the path against root and returns the matched values in
// document order. Each segment consumes the match set produced by the
// previous one: matches are concatenated parent-first, then child order.
// An empty result means nothing matched; it is not an error.
func (p *Path) Select(root value.Value) []value.Value {
	matches := []value.Value{root}

	for _, seg := range p.segs {
		next := make([]value.Value, 0, len(matches))
		for _, m := range matches {
			if seg.deep {
				next = applyDeep(seg.sels, m, next)
			} else {
				next = applySelectors(seg.sels, m, next)
			}
		}
		matches = next
	}

	return matches
}

// Select compiles and evaluates expr against root in one step.
func Select(root value.Value, expr string) ([]value.Value, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Select(root), nil
}

func applySelectors(sels []selector, node value.Value, dst []value.Value) []value.Value {
	for _, sel := range sels {
		dst = sel.apply(node, dst)
	}
	return dst
}

// applyDeep applies the selectors to the node itself and to every descendant
// in pre-order, so each reachable position is visited exactly once.
func applyDeep(sels []selector, node value.Value, dst []value.Value) []value.Value {
	dst = applySelectors(sels, node, dst)
	for _, child := range node.Children() {
		dst = applyDeep(sels, child, dst)
	}
	return dst
}

package jsonpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmorlim/jqr/internal/value"
)

const (
	litNum litKind = iota + 1
	litStr
	litBool
	litNull
	litRegex
	litArray
)

var filterRe = regexp.MustCompile(`^@((?:\.[-\w]+)*)\s*(==|!=|<=|>=|<|>|=~|!~|in|nin)?\s*(.*)$`)

type litKind uint8

// segment is one step of a compiled path. When deep is true the selectors
// apply to the node itself and every descendant ('..').
type segment struct {
	deep bool
	sels []selector
}

type comparison struct {
	op    string
	num   float64
	str   string
	b     bool
	regex *regexp.Regexp
	arr   []value.Value
	kind  litKind
}

func compile(expr string) ([]segment, error) {
	if err := validateExpression(expr); err != nil {
		return nil, err
	}

	if expr == "$" {
		return []segment{}, nil
	}

	i := 1 // parsing index, past the '$' anchor
	var segs []segment

	for i < len(expr) {
		seg, next, err := parseSegment(expr, i)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		i = next
	}

	return segs, nil
}

func validateExpression(expr string) error {
	if expr == "" {
		return fmt.Errorf("%w: expression cannot be empty", ErrSyntax)
	}
	if expr[0] != '$' || (len(expr) > 1 && expr[1] != '.' && expr[1] != '[') {
		return fmt.Errorf("%w: expression must start with '$', '$.', or '$['", ErrSyntax)
	}
	return nil
}

func parseSegment(expr string, i int) (segment, int, error) {
	switch expr[i] {
	case '.':
		return parseDotSegment(expr, i)
	case '[':
		seg, next, err := parseBracketSegment(expr, i, false)
		return seg, next, err
	default:
		return segment{}, i, fmt.Errorf("%w: unexpected character %q at position %d, expected '.' or '['", ErrSyntax, expr[i], i)
	}
}

func parseDotSegment(expr string, i int) (segment, int, error) {
	deep := false
	if i+1 < len(expr) && expr[i+1] == '.' { // descendant '..'
		deep = true
		i += 2
	} else { // child '.'
		i++
	}

	if i >= len(expr) {
		return segment{}, i, fmt.Errorf("%w: path cannot end with '.' or '..'", ErrSyntax)
	}

	// '..[...]' applies a bracket selector at every depth.
	if expr[i] == '[' {
		if !deep {
			return segment{}, i, fmt.Errorf("%w: unexpected '[' after '.' at position %d", ErrSyntax, i)
		}
		return parseBracketSegment(expr, i, true)
	}

	seg := segment{deep: deep}
	if expr[i] == '*' {
		seg.sels = append(seg.sels, wildcardSel{})
		return seg, i + 1, nil
	}

	name, next, err := parseName(expr, i)
	if err != nil {
		return segment{}, i, err
	}
	seg.sels = append(seg.sels, nameSel(name))
	return seg, next, nil
}

func parseName(expr string, i int) (string, int, error) {
	start := i
	for i < len(expr) && idRune(expr[i]) {
		i++
	}
	if start == i {
		return "", i, fmt.Errorf("%w: name selector cannot be empty after '.' at position %d", ErrSyntax, start)
	}
	return expr[start:i], i, nil
}

// idRune checks if a byte is valid for unquoted names after '.'.
func idRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

func parseBracketSegment(expr string, i int, deep bool) (segment, int, error) {
	i++ // consume '['
	if i >= len(expr) {
		return segment{}, i, fmt.Errorf("%w: unterminated bracket selector, missing ']'", ErrSyntax)
	}

	if i+1 < len(expr) && expr[i] == '?' && expr[i+1] == '(' {
		seg, next, err := parseFilterSegment(expr, i)
		seg.deep = deep
		return seg, next, err
	}

	seg, next, err := parseUnionSegment(expr, i)
	seg.deep = deep
	return seg, next, err
}

func parseFilterSegment(expr string, i int) (segment, int, error) {
	end := findMatchingBracket(expr, i-1)
	if end == -1 {
		return segment{}, i, fmt.Errorf("%w: unterminated filter expression, missing ']' for '[?(...)'", ErrSyntax)
	}

	body := expr[i:end]
	i = end + 1

	if !strings.HasPrefix(body, "?(") || !strings.HasSuffix(body, ")") {
		return segment{}, i, fmt.Errorf("%w: malformed filter, expected '[?(<expression>)]' but got '[%s]'", ErrSyntax, body)
	}

	inside := strings.TrimSpace(body[2 : len(body)-1])
	fs, err := parseFilter(inside)
	if err != nil {
		return segment{}, i, fmt.Errorf("parsing filter body %q: %w", inside, err)
	}

	return segment{sels: []selector{fs}}, i, nil
}

func parseUnionSegment(expr string, i int) (segment, int, error) {
	start := i
	rel := strings.IndexByte(expr[i:], ']')
	if rel == -1 {
		return segment{}, i, fmt.Errorf("%w: unterminated bracket selector, missing ']' for %q", ErrSyntax, expr[start:])
	}

	content := expr[start : start+rel]
	i = start + rel + 1

	if strings.TrimSpace(content) == "" {
		return segment{}, i, fmt.Errorf("%w: empty bracket selector '[]'", ErrSyntax)
	}

	seg := segment{}
	for _, part := range strings.Split(content, ",") {
		sel, err := parseUnionPart(part)
		if err != nil {
			return segment{}, i, err
		}
		seg.sels = append(seg.sels, sel)
	}

	return seg, i, nil
}

func parseUnionPart(part string) (selector, error) {
	p := strings.TrimSpace(part)
	if p == "" {
		return nil, fmt.Errorf("%w: empty part in union selector", ErrSyntax)
	}

	if p == "*" {
		return wildcardSel{}, nil
	}

	if isQuoted(p) {
		return nameSel(p[1 : len(p)-1]), nil
	}

	if strings.Contains(p, ":") {
		return parseSlice(p)
	}

	if idx, err := strconv.Atoi(p); err == nil {
		return indexSel(idx), nil
	}

	if isBareName(p) {
		return nameSel(p), nil
	}

	return nil, fmt.Errorf("%w: invalid content %q in bracket selector", ErrSyntax, p)
}

func isBareName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !idRune(s[i]) {
			return false
		}
	}
	return len(s) > 0
}

func isQuoted(s string) bool {
	return (len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'') ||
		(len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"')
}

func parseSlice(p string) (selector, error) {
	bounds := strings.Split(p, ":")
	if len(bounds) > 3 {
		return nil, fmt.Errorf("%w: too many colons in slice %q", ErrSyntax, p)
	}

	var s sliceSel
	var err error

	if s.start, err = parseSliceBound(bounds[0], "start", p); err != nil {
		return nil, err
	}
	if len(bounds) > 1 {
		if s.end, err = parseSliceBound(bounds[1], "end", p); err != nil {
			return nil, err
		}
	}
	if len(bounds) == 3 {
		step, err := parseSliceBound(bounds[2], "step", p)
		if err != nil {
			return nil, err
		}
		if step != nil {
			if *step == 0 {
				return nil, fmt.Errorf("%w: slice step cannot be zero in %q", ErrSyntax, p)
			}
			s.step = step
		}
	}

	return s, nil
}

func parseSliceBound(raw, boundType, fullSlice string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: slice %s %q in %q is not a number", ErrSyntax, boundType, trimmed, fullSlice)
	}
	return &v, nil
}

// findMatchingBracket finds the closing bracket matching the opening bracket
// at start, skipping brackets inside quoted strings.
func findMatchingBracket(expr string, start int) int {
	if start >= len(expr) || expr[start] != '[' {
		return -1
	}

	depth := 0
	inSingle := false
	inDouble := false

	for i := start; i < len(expr); i++ {
		c := expr[i]

		if i > 0 && expr[i-1] == '\\' {
			continue
		}

		if c == '\'' && !inDouble {
			inSingle = !inSingle
			continue
		}
		if c == '"' && !inSingle {
			inDouble = !inDouble
			continue
		}
		if inSingle || inDouble {
			continue
		}

		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// parseFilter compiles a single atomic comparison or existence filter.
// An empty path after '@' means the predicate applies to the child itself.
func parseFilter(s string) (filterSel, error) {
	m := filterRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return filterSel{}, fmt.Errorf("%w: filter must be like '@.path <op> <literal>' or '@.path'", ErrNotSupported)
	}

	path, op, literal := m[1], m[2], m[3]

	fs := filterSel{}
	if path != "" {
		fs.path = strings.Split(path[1:], ".")
	}

	if op == "" {
		if literal != "" {
			return filterSel{}, fmt.Errorf("%w: unexpected trailing content %q in filter", ErrSyntax, literal)
		}
		if len(fs.path) == 0 {
			return filterSel{}, fmt.Errorf("%w: existence filter needs a path after '@'", ErrSyntax)
		}
		fs.exists = true
		return fs, nil
	}

	cmp, err := parseComparison(op, strings.TrimSpace(literal))
	if err != nil {
		return filterSel{}, err
	}
	fs.cmp = cmp
	return fs, nil
}

func parseComparison(op, literal string) (comparison, error) {
	if op == "in" || op == "nin" {
		return parseArrayComparison(op, literal)
	}

	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return parseNumericComparison(op, f, literal)
	}

	if cmp, ok := parseKeywordComparison(op, literal); ok {
		return cmp, nil
	}

	if cmp, ok := parseStringComparison(op, literal); ok {
		return cmp, nil
	}

	if cmp, err := parseRegexComparison(op, literal); err == nil {
		return cmp, nil
	}

	return comparison{}, fmt.Errorf("%w: unsupported literal %q for operator %q", ErrNotSupported, literal, op)
}

func parseNumericComparison(op string, f float64, literal string) (comparison, error) {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return comparison{op: op, num: f, kind: litNum}, nil
	default:
		return comparison{}, fmt.Errorf("%w: operator %q not valid for numeric literal %q", ErrNotSupported, op, literal)
	}
}

func parseKeywordComparison(op, literal string) (comparison, bool) {
	if op != "==" && op != "!=" {
		return comparison{}, false
	}
	switch literal {
	case "true":
		return comparison{op: op, b: true, kind: litBool}, true
	case "false":
		return comparison{op: op, kind: litBool}, true
	case "null":
		return comparison{op: op, kind: litNull}, true
	default:
		return comparison{}, false
	}
}

func parseStringComparison(op, literal string) (comparison, bool) {
	if !isQuoted(literal) {
		return comparison{}, false
	}
	switch op {
	case "==", "!=":
		return comparison{op: op, str: literal[1 : len(literal)-1], kind: litStr}, true
	default:
		return comparison{}, false
	}
}

func parseRegexComparison(op, literal string) (comparison, error) {
	if len(literal) < 2 || literal[0] != '/' {
		return comparison{}, fmt.Errorf("not a regex literal")
	}

	lastSlash := strings.LastIndexByte(literal[1:], '/')
	if lastSlash == -1 {
		return comparison{}, fmt.Errorf("unterminated regex literal")
	}
	lastSlash++

	pat := literal[1:lastSlash]
	flags := literal[lastSlash+1:]

	if op != "=~" && op != "!~" {
		return comparison{}, fmt.Errorf("%w: operator %q not valid for regex literal %s", ErrNotSupported, op, literal)
	}

	goFlags, err := regexFlags(flags, literal)
	if err != nil {
		return comparison{}, err
	}

	pattern := pat
	if goFlags != "" {
		pattern = "(?" + goFlags + ")" + pat
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return comparison{}, fmt.Errorf("compiling regex literal %s: %w", literal, err)
	}

	return comparison{op: op, regex: re, kind: litRegex}, nil
}

func regexFlags(flags, literal string) (string, error) {
	for _, f := range flags {
		if f != 's' && f != 'i' && f != 'm' {
			return "", fmt.Errorf("%w: unsupported regex flag %q in %s", ErrNotSupported, f, literal)
		}
	}
	return flags, nil
}

func parseArrayComparison(op, literal string) (comparison, error) {
	if !strings.HasPrefix(literal, "[") || !strings.HasSuffix(literal, "]") {
		return comparison{}, fmt.Errorf("%w: array literal %q must be enclosed in square brackets", ErrSyntax, literal)
	}

	content := strings.TrimSpace(literal[1 : len(literal)-1])
	if content == "" {
		return comparison{op: op, kind: litArray}, nil
	}

	var arr []value.Value
	for _, part := range splitArrayElements(content) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := parseArrayElement(part)
		if err != nil {
			return comparison{}, fmt.Errorf("parsing array element %q: %w", part, err)
		}
		arr = append(arr, v)
	}

	return comparison{op: op, arr: arr, kind: litArray}, nil
}

// splitArrayElements splits array content by commas, respecting quoted strings.
func splitArrayElements(content string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := byte(0)

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case !inQuotes && (c == '\'' || c == '"'):
			inQuotes = true
			quoteChar = c
			current.WriteByte(c)
		case inQuotes && c == quoteChar:
			if i == 0 || content[i-1] != '\\' {
				inQuotes = false
			}
			current.WriteByte(c)
		case !inQuotes && c == ',':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func parseArrayElement(element string) (value.Value, error) {
	if n, ok := value.NumberFromLiteral(element); ok {
		return value.Num(n), nil
	}

	switch element {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "null":
		return value.Null(), nil
	}

	if isQuoted(element) {
		return value.String(element[1 : len(element)-1]), nil
	}

	return value.Value{}, fmt.Errorf("unsupported array element format: %s", element)
}

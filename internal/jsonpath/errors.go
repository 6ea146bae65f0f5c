package jsonpath

import "errors"

var (
	// ErrSyntax indicates a path expression syntax error during compilation.
	ErrSyntax = errors.New("jsonpath: syntax error")

	// ErrNotSupported indicates a JSONPath feature outside the supported subset.
	ErrNotSupported = errors.New("jsonpath: feature not supported")
)

// Package jsonpath compiles path expressions and evaluates them against the
// value model. Compilation validates the whole expression up front; a path
// that compiles never fails during evaluation, it can only match nothing.
//
// Supported selectors (RFC 9535 terminology):
//   - Child `.` and descendant `..` segments
//   - Name (dotted, quoted or bare in brackets), array index (negative counts
//     from the end), wildcard `*`, slices `start:end:step`, unions `[a,b]`
//   - Scalar filters `[?(@.path <op> <literal>)]` and existence `[?(@.path)]`
//     <op>      →  ==  !=  <  <=  >  >=  =~  !~  in  nin
//     <literal> →  number | 'string' | true | false | null | /regex/flags
//                | [value1,value2,...]
//     (flags: i,m,s; array values can be strings, numbers, booleans, null)
//
// Filter comparisons coerce only within compatible scalar kinds; comparing a
// number against a string matches nothing rather than failing the query.
//
// Unsupported features raise ErrNotSupported at compile time.
package jsonpath

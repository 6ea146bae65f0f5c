package jsonpath_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dmorlim/jqr/internal/json"
	"github.com/dmorlim/jqr/internal/jsonpath"
	"github.com/dmorlim/jqr/internal/value"
)

const storeJSON = `{
  "store": {
    "book": [
      { "category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95 },
      { "category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99 },
      { "category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99 },
      { "category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99 }
    ],
    "bicycle": { "color": "red", "price": 399 }
  }
}`

const usersJSON = `{
  "users": [
    { "name": "Alice", "email": "alice@example.com", "age": 30, "admin": true },
    { "name": "Bob", "email": "bob@test.org", "age": 25, "admin": false },
    { "name": "Charlie", "email": "charlie@example.com", "age": 35, "admin": false, "nickname": null }
  ],
  "features": {
    "auth": true,
    "logging": false
  }
}`

const (
	book0   = `{"category":"reference","author":"Nigel Rees","title":"Sayings of the Century","price":8.95}`
	book1   = `{"category":"fiction","author":"Evelyn Waugh","title":"Sword of Honour","price":12.99}`
	book2   = `{"category":"fiction","author":"Herman Melville","title":"Moby Dick","isbn":"0-553-21311-3","price":8.99}`
	book3   = `{"category":"fiction","author":"J. R. R. Tolkien","title":"The Lord of the Rings","isbn":"0-395-19395-8","price":22.99}`
	bicycle = `{"color":"red","price":399}`
)

func mustParse(t *testing.T, input string) value.Value {
	t.Helper()
	doc, err := json.Parse([]byte(input))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func encodeAll(t *testing.T, matches []value.Value) []string {
	t.Helper()
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		b, err := json.Encode(m)
		if err != nil {
			t.Fatalf("encoding match: %v", err)
		}
		out = append(out, string(b))
	}
	return out
}

func TestSelectStore(t *testing.T) {
	root := mustParse(t, storeJSON)

	tests := []struct {
		name   string
		query  string
		expect []string
	}{
		{
			name:   "root",
			query:  "$",
			expect: []string{`{"store":{"book":[` + book0 + `,` + book1 + `,` + book2 + `,` + book3 + `],"bicycle":` + bicycle + `}}`},
		},
		{
			name:   "child_chain",
			query:  "$.store.bicycle.color",
			expect: []string{`"red"`},
		},
		{
			name:   "quoted_field",
			query:  "$['store']['bicycle']['price']",
			expect: []string{`399`},
		},
		{
			name:   "bare_bracket_name",
			query:  "$[store].bicycle[color]",
			expect: []string{`"red"`},
		},
		{
			name:   "wildcard_authors",
			query:  "$.store.book[*].author",
			expect: []string{`"Nigel Rees"`, `"Evelyn Waugh"`, `"Herman Melville"`, `"J. R. R. Tolkien"`},
		},
		{
			name:   "recursive_authors",
			query:  "$..author",
			expect: []string{`"Nigel Rees"`, `"Evelyn Waugh"`, `"Herman Melville"`, `"J. R. R. Tolkien"`},
		},
		{
			name:   "store_wildcard",
			query:  "$.store.*",
			expect: []string{`[` + book0 + `,` + book1 + `,` + book2 + `,` + book3 + `]`, bicycle},
		},
		{
			name:   "recursive_prices_under_store",
			query:  "$.store..price",
			expect: []string{`8.95`, `12.99`, `8.99`, `22.99`, `399`},
		},
		{
			name:   "third_book",
			query:  "$..book[2]",
			expect: []string{book2},
		},
		{
			name:   "third_book_author",
			query:  "$..book[2].author",
			expect: []string{`"Herman Melville"`},
		},
		{
			name:   "nonexistent_property",
			query:  "$..book[2].publisher",
			expect: []string{},
		},
		{
			name:   "last_book",
			query:  "$..book[-1]",
			expect: []string{book3},
		},
		{
			name:   "negative_index_out_of_range",
			query:  "$..book[-5]",
			expect: []string{},
		},
		{
			name:   "first_two_books",
			query:  "$..book[:2]",
			expect: []string{book0, book1},
		},
		{
			name:   "books_1_to_3",
			query:  "$..book[1:3]",
			expect: []string{book1, book2},
		},
		{
			name:   "every_second_book",
			query:  "$..book[::2]",
			expect: []string{book0, book2},
		},
		{
			name:   "every_second_starting_at_1",
			query:  "$..book[1::2]",
			expect: []string{book1, book3},
		},
		{
			name:   "last_slice",
			query:  "$..book[-1:]",
			expect: []string{book3},
		},
		{
			name:   "all_but_last_two",
			query:  "$..book[:-2]",
			expect: []string{book0, book1},
		},
		{
			name:   "reverse_slice",
			query:  "$..book[3:1:-1]",
			expect: []string{book3, book2},
		},
		{
			name:   "index_union",
			query:  "$..book[0,2]",
			expect: []string{book0, book2},
		},
		{
			name:   "name_union",
			query:  "$.store.book[0]['title','price']",
			expect: []string{`"Sayings of the Century"`, `8.95`},
		},
		{
			name:   "filter_existence",
			query:  "$..book[?(@.isbn)]",
			expect: []string{book2, book3},
		},
		{
			name:   "filter_price_lt",
			query:  "$..book[?(@.price < 9)]",
			expect: []string{book0, book2},
		},
		{
			name:   "filter_price_gte",
			query:  "$..book[?(@.price >= 12.99)]",
			expect: []string{book1, book3},
		},
		{
			name:   "filter_string_eq",
			query:  "$..book[?(@.category == 'fiction')].title",
			expect: []string{`"Sword of Honour"`, `"Moby Dick"`, `"The Lord of the Rings"`},
		},
		{
			name:   "filter_string_neq",
			query:  "$..book[?(@.category != 'fiction')].title",
			expect: []string{`"Sayings of the Century"`},
		},
		{
			name:   "filter_regex",
			query:  "$..book[?(@.author =~ /^J/)].title",
			expect: []string{`"The Lord of the Rings"`},
		},
		{
			name:   "filter_regex_case_insensitive",
			query:  "$..book[?(@.author =~ /^nigel/i)].title",
			expect: []string{`"Sayings of the Century"`},
		},
		{
			name:   "filter_in",
			query:  "$..book[?(@.category in ['reference'])].title",
			expect: []string{`"Sayings of the Century"`},
		},
		{
			name:   "filter_nin",
			query:  "$..book[?(@.category nin ['fiction'])].title",
			expect: []string{`"Sayings of the Century"`},
		},
		{
			name:   "filter_kind_mismatch_is_no_match",
			query:  "$..book[?(@.author == 5)]",
			expect: []string{},
		},
		{
			name:   "filter_number_against_string_literal_is_no_match",
			query:  "$..book[?(@.price == '8.95')]",
			expect: []string{},
		},
		{
			name:   "deep_bracket_index",
			query:  "$..[0]",
			expect: []string{book0},
		},
		{
			name:   "missing_field",
			query:  "$.store.magazine",
			expect: []string{},
		},
		{
			name:   "index_into_mapping_is_no_match",
			query:  "$.store[0]",
			expect: []string{},
		},
		{
			name:   "field_on_scalar_is_no_match",
			query:  "$.store.bicycle.color.shade",
			expect: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matches, err := jsonpath.Select(root, tc.query)
			if err != nil {
				t.Fatalf("Select(%q) returned error: %v", tc.query, err)
			}
			got := encodeAll(t, matches)
			if !reflect.DeepEqual(got, tc.expect) {
				t.Errorf("Select(%q)\n got: %v\nwant: %v", tc.query, got, tc.expect)
			}
		})
	}
}

func TestSelectUsers(t *testing.T) {
	root := mustParse(t, usersJSON)

	tests := []struct {
		name   string
		query  string
		expect []string
	}{
		{
			name:   "filter_number_gt",
			query:  "$.users[?(@.age > 28)].name",
			expect: []string{`"Alice"`, `"Charlie"`},
		},
		{
			name:   "filter_bool_literal",
			query:  "$.users[?(@.admin == true)].name",
			expect: []string{`"Alice"`},
		},
		{
			name:   "filter_bool_negated",
			query:  "$.users[?(@.admin != true)].name",
			expect: []string{`"Bob"`, `"Charlie"`},
		},
		{
			name:   "filter_null_literal",
			query:  "$.users[?(@.nickname == null)].name",
			expect: []string{`"Charlie"`},
		},
		{
			name:   "filter_self_on_mapping_children",
			query:  "$.features[?(@ == true)]",
			expect: []string{`true`},
		},
		{
			name:   "filter_in_numbers",
			query:  "$.users[?(@.age in [25, 35])].name",
			expect: []string{`"Bob"`, `"Charlie"`},
		},
		{
			name:   "wildcard_on_mapping_in_insertion_order",
			query:  "$.features[*]",
			expect: []string{`true`, `false`},
		},
		{
			name:   "recursive_wildcard_emails",
			query:  "$..email",
			expect: []string{`"alice@example.com"`, `"bob@test.org"`, `"charlie@example.com"`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matches, err := jsonpath.Select(root, tc.query)
			if err != nil {
				t.Fatalf("Select(%q) returned error: %v", tc.query, err)
			}
			got := encodeAll(t, matches)
			if !reflect.DeepEqual(got, tc.expect) {
				t.Errorf("Select(%q)\n got: %v\nwant: %v", tc.query, got, tc.expect)
			}
		})
	}
}

func TestRootReturnsInputUnmodified(t *testing.T) {
	root := mustParse(t, storeJSON)

	matches, err := jsonpath.Select(root, "$")
	if err != nil {
		t.Fatalf("Select($) returned error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Select($) returned %d matches, want 1", len(matches))
	}
	if !matches[0].Equal(root) {
		t.Error("Select($) did not return the root value")
	}
}

func TestWildcardMappingMatchCount(t *testing.T) {
	root := mustParse(t, `{"a":1,"b":2,"c":3,"d":4}`)

	matches, err := jsonpath.Select(root, "$[*]")
	if err != nil {
		t.Fatalf("Select($[*]) returned error: %v", err)
	}
	got := encodeAll(t, matches)
	want := []string{"1", "2", "3", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wildcard matches = %v, want %v", got, want)
	}
}

func TestEmptyMatchSetIsNotAnError(t *testing.T) {
	root := mustParse(t, `{"a":1}`)

	matches, err := jsonpath.Select(root, "$.missing.deeper[3]")
	if err != nil {
		t.Fatalf("expected no error for empty result, got %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty match set, got %d matches", len(matches))
	}
}

func TestCompiledPathIsReusable(t *testing.T) {
	path, err := jsonpath.Compile("$.store.bicycle.color")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if path.String() != "$.store.bicycle.color" {
		t.Errorf("String() = %q", path.String())
	}

	root := mustParse(t, storeJSON)
	for i := 0; i < 2; i++ {
		matches := path.Select(root)
		if len(matches) != 1 || matches[0].StringValue() != "red" {
			t.Fatalf("unexpected matches: %v", encodeAll(t, matches))
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"empty expression", "", jsonpath.ErrSyntax},
		{"missing root", "store.book", jsonpath.ErrSyntax},
		{"bad char after root", "$store", jsonpath.ErrSyntax},
		{"trailing dot", "$.store.", jsonpath.ErrSyntax},
		{"bare descendant", "$..", jsonpath.ErrSyntax},
		{"trailing descendant", "$..store..", jsonpath.ErrSyntax},
		{"unterminated bracket", "$[", jsonpath.ErrSyntax},
		{"empty bracket", "$[]", jsonpath.ErrSyntax},
		{"unterminated filter", "$[?(@.a == 1", jsonpath.ErrSyntax},
		{"zero slice step", "$.a[1:2:0]", jsonpath.ErrSyntax},
		{"slice bound not a number", "$.a[1:x]", jsonpath.ErrSyntax},
		{"too many slice colons", "$.a[1:2:3:4]", jsonpath.ErrSyntax},
		{"bracket after single dot", "$.[0]", jsonpath.ErrSyntax},
		{"filter without at", "$.a[?(price > 5)]", jsonpath.ErrNotSupported},
		{"filter bad literal", "$.a[?(@.price == banana)]", jsonpath.ErrNotSupported},
		{"string ordering unsupported", "$.a[?(@.name < 'x')]", jsonpath.ErrNotSupported},
		{"unsupported regex flag", "$.a[?(@.name =~ /x/g)]", jsonpath.ErrNotSupported},
		{"array literal missing brackets", "$.a[?(@.x in 1,2)]", jsonpath.ErrSyntax},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jsonpath.Compile(tc.query)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tc.query)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Compile(%q) error = %v, want %v", tc.query, err, tc.want)
			}
		})
	}
}

func TestRecursiveDescentVisitsDistinctPositions(t *testing.T) {
	// Equal leaves at different positions are distinct matches.
	root := mustParse(t, `{"a":{"x":1},"b":{"x":1}}`)

	matches, err := jsonpath.Select(root, "$..x")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestRecursiveWildcardPreOrder(t *testing.T) {
	root := mustParse(t, `{"a":{"b":1},"c":[2]}`)

	matches, err := jsonpath.Select(root, "$..*")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	got := encodeAll(t, matches)
	want := []string{`{"b":1}`, `[2]`, `1`, `2`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("$..* = %v, want %v", got, want)
	}
}

// Package execute runs the jqr pipeline: read the input, bridge it into the
// value model, evaluate the optional query, and render the result either for
// display or through the opposite format bridge. The whole run is
// synchronous and owns its data end to end.
package execute

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dmorlim/jqr/internal/config"
	"github.com/dmorlim/jqr/internal/exit"
	"github.com/dmorlim/jqr/internal/json"
	"github.com/dmorlim/jqr/internal/jsonpath"
	"github.com/dmorlim/jqr/internal/printer"
	"github.com/dmorlim/jqr/internal/value"
	"github.com/dmorlim/jqr/internal/yaml"
)

// Run executes a single invocation and returns its terminal result.
func Run(cfg *config.Config, stdin io.Reader) *exit.Result {
	data, err := readInput(cfg, stdin)
	if err != nil {
		return exit.Errorf("jqr: %v\n", err)
	}

	doc, err := parseInput(data, resolveFormat(cfg, data))
	if err != nil {
		return exit.Errorf("jqr: %v\n", err)
	}

	matches := []value.Value{doc}
	if cfg.Query != "" {
		path, err := jsonpath.Compile(cfg.Query)
		if err != nil {
			return exit.Errorf("jqr: %v\n", err)
		}
		matches = path.Select(doc)
		if len(matches) == 0 {
			return exit.Notice("jqr: no matches\n")
		}
	}

	output, err := render(cfg, matches)
	if err != nil {
		return exit.Errorf("jqr: %v\n", err)
	}
	return exit.Success(output)
}

func readInput(cfg *config.Config, stdin io.Reader) ([]byte, error) {
	if cfg.File == "" || cfg.File == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// resolveFormat picks the input format: an explicit flag wins, a conversion
// target implies the opposite source, otherwise the content is sniffed.
func resolveFormat(cfg *config.Config, data []byte) string {
	if format := cfg.InputFormat(); format != config.FormatAuto {
		return format
	}
	return detectFormat(data)
}

// detectFormat sniffs the input: a document opening with '{', '[' or '"' is
// JSON, anything else is YAML. Malformed JSON therefore reports a JSON parse
// error instead of cascading into a YAML one.
func detectFormat(data []byte) string {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '{', '[', '"':
			return config.FormatJSON
		}
	}
	return config.FormatYAML
}

func parseInput(data []byte, format string) (value.Value, error) {
	if format == config.FormatJSON {
		return json.Parse(data)
	}
	return yaml.Parse(data)
}

// render turns the match set into the final output text. With a conversion
// flag the query result is converted (a query ran first when present);
// multiple matches convert as a single sequence. Without one, matches are
// pretty-printed for display.
func render(cfg *config.Config, matches []value.Value) (string, error) {
	switch {
	case cfg.ToYAML:
		payload, err := yaml.Encode(collapse(matches))
		if err != nil {
			return "", err
		}
		return string(payload), nil
	case cfg.ToJSON:
		payload, err := json.Encode(collapse(matches))
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	case cfg.Query != "":
		return printer.Matches(matches)
	default:
		return printer.Document(matches[0])
	}
}

func collapse(matches []value.Value) value.Value {
	if len(matches) == 1 {
		return matches[0]
	}
	return value.Sequence(matches...)
}

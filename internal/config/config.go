package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmorlim/jqr/internal/exit"
)

// Input formats. FormatAuto defers to content sniffing.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	ErrNoArguments        = errors.New("no arguments provided")
	ErrConflictingTargets = errors.New("--to-yaml and --to-json are mutually exclusive")
	ErrTooManyArguments   = errors.New("too many positional arguments")
	ErrUnknownFormat      = errors.New("format must be one of auto, json, yaml")
)

// Config represents a single jqr invocation.
type Config struct {
	// File is the input path; empty or "-" reads standard input.
	File string
	// Query is the optional path expression, e.g. "$.user.name".
	Query string

	// Conversion targets. When combined with a query, the query applies
	// first and its result is converted.
	ToYAML bool
	ToJSON bool

	// Format forces the input format; FormatAuto sniffs the content.
	Format string
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}
	if len(args) == 1 {
		return nil, exit.Success(Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		toYAML = fs.Bool("to-yaml", false, "Convert the input (or query result) to YAML")
		toJSON = fs.Bool("to-json", false, "Convert the input (or query result) to JSON")
		format = fs.String("format", FormatAuto, "Input format: auto, json or yaml")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	cfg := &Config{
		ToYAML: *toYAML,
		ToJSON: *toJSON,
		Format: strings.ToLower(*format),
	}

	if err := cfg.assignPositionals(fs.Args()); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return cfg, nil
}

// assignPositionals maps the positional arguments onto file and query.
// A single positional beginning with '$' is a query with input from stdin.
func (c *Config) assignPositionals(args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		if strings.HasPrefix(args[0], "$") {
			c.Query = args[0]
		} else {
			c.File = args[0]
		}
		return nil
	case 2:
		c.File = args[0]
		c.Query = args[1]
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrTooManyArguments, args[2:])
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.ToYAML && c.ToJSON {
		return ErrConflictingTargets
	}
	switch c.Format {
	case FormatAuto, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownFormat, c.Format)
	}
	return nil
}

// InputFormat resolves the effective input format. A conversion flag implies
// the opposite source format unless --format overrides it.
func (c *Config) InputFormat() string {
	if c.Format != FormatAuto {
		return c.Format
	}
	if c.ToJSON {
		return FormatYAML
	}
	if c.ToYAML {
		return FormatJSON
	}
	return FormatAuto
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jqr - pretty-print, query and convert JSON/YAML documents

Usage: jqr [options] [file] [query]

Arguments:
  file          Path to a JSON or YAML document ("-" or omitted reads stdin)
  query         Optional JSONPath query, e.g. '$.user.name'
                (a single positional starting with '$' is treated as the query)

Options:
  --to-yaml     Render the input (or the query result) as YAML
  --to-json     Render the input (or the query result) as JSON
  --format F    Force the input format: auto, json or yaml (default: auto)
  -h, --help    Show this help message

Examples:
  jqr data.json                          # Pretty-print a JSON file
  jqr data.json '$.user.name'            # Extract a single field
  jqr data.json '$.users[*].email'       # Extract all matches
  jqr data.json --to-yaml                # Convert JSON to YAML
  jqr config.yaml --to-json              # Convert YAML to JSON
  cat data.json | jqr '$..price'         # Query standard input
`
}

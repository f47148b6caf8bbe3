// Package output renders estimates for people and machines.
package output

import (
	"io"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal report
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the estimate
	Render(w io.Writer, e *types.Estimate) error
}

// New returns the formatter for a format name
func New(format string, noColor bool) (Formatter, error) {
	switch Format(format) {
	case FormatCLI, "":
		return &CLIFormatter{NoColor: noColor}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}, nil
	default:
		return nil, errors.Input("unsupported output format: " + format)
	}
}

package output

import (
	"encoding/json"
	"io"

	"construction-cost/core/types"
)

// JSONFormatter writes the estimate as JSON. Amounts keep full precision;
// consumers round for display.
type JSONFormatter struct {
	Indent string
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the estimate
func (f *JSONFormatter) Render(w io.Writer, e *types.Estimate) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(e)
}

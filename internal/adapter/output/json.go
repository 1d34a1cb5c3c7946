package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/platepix/internal/widget"
)

// JSONFormatter formats entries as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes entries as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, entries []widget.Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

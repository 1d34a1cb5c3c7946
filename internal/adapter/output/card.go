package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/platepix/internal/widget"
)

// CardFormatter renders entries as themed terminal cards.
type CardFormatter struct {
	opts FormatterOptions
}

// NewCardFormatter creates a new card formatter.
func NewCardFormatter(opts FormatterOptions) *CardFormatter {
	return &CardFormatter{opts: opts}
}

// Format writes one card per entry.
func (f *CardFormatter) Format(w io.Writer, entries []widget.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, widget.Render(e, f.opts.Width)); err != nil {
			return err
		}
	}
	return nil
}

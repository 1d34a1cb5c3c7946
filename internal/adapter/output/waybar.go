package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/platepix/internal/widget"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

// WaybarFormatter writes a single Waybar status line. The first entry is
// the bar text; all entries go into the tooltip.
type WaybarFormatter struct {
	opts FormatterOptions
}

// NewWaybarFormatter creates a new Waybar formatter.
func NewWaybarFormatter(opts FormatterOptions) *WaybarFormatter {
	return &WaybarFormatter{opts: opts}
}

// Format writes the Waybar JSON object.
func (f *WaybarFormatter) Format(w io.Writer, entries []widget.Entry) error {
	return json.NewEncoder(w).Encode(f.Status(entries))
}

// Status builds the WaybarStatus for entries.
func (f *WaybarFormatter) Status(entries []widget.Entry) WaybarStatus {
	if len(entries) == 0 {
		return WaybarStatus{Text: "", Alt: "empty", Class: "empty"}
	}

	first := entries[0]
	class := first.ThemeID
	if first.Placeholder {
		class = "placeholder"
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Title, e.Text))
	}
	if !f.opts.RefreshAt.IsZero() {
		lines = append(lines, "Next refresh "+humanize.Time(f.opts.RefreshAt))
	}

	return WaybarStatus{
		Text:    first.Text,
		Alt:     string(first.Set),
		Tooltip: strings.Join(lines, "\n"),
		Class:   class,
	}
}

// Package output provides output formatters for widget entries.
package output

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/platepix/internal/widget"
)

// Formatter formats widget entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []widget.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain  FormatType = "plain"
	FormatJSON   FormatType = "json"
	FormatWaybar FormatType = "waybar"
	FormatCard   FormatType = "card"
)

// ValidFormats returns all valid format values.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatWaybar, FormatCard}
}

// ParseFormat converts a flag value to a FormatType.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range ValidFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatWaybar:
		return NewWaybarFormatter(opts)
	case FormatCard:
		return NewCardFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string    // Custom template for plain format
	ShowTitle bool      // Prefix plain output with the entry title
	Width     int       // Card width (0 = widget.DefaultWidth)
	RefreshAt time.Time // When the widget refreshes next (waybar tooltip)
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTitle: true,
	}
}

// templateData is passed to custom templates.
type templateData struct {
	widget.Entry
	RefreshAt time.Time
}

// templateFuncs returns the functions available in custom templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"humanTime": humanize.Time,
		"date": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},
	}
}

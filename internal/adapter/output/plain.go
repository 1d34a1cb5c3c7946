package output

import (
	"fmt"
	"io"
	"text/template"

	"github.com/jmylchreest/platepix/internal/widget"
)

// PlainFormatter formats entries as plain text, one per line.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter. An invalid custom
// template is ignored in favour of the default layout.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []widget.Entry) error {
	for _, e := range entries {
		if err := f.formatEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEntry(w io.Writer, e widget.Entry) error {
	if f.template != nil {
		if err := f.template.Execute(w, templateData{Entry: e, RefreshAt: f.opts.RefreshAt}); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	if f.opts.ShowTitle && e.Title != "" {
		_, err := fmt.Fprintf(w, "%s: %s\n", e.Title, e.Text)
		return err
	}
	_, err := fmt.Fprintln(w, e.Text)
	return err
}

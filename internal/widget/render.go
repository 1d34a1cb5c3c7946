package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/platepix/internal/theme"
)

// DefaultWidth is the card width used when the caller has no preference.
const DefaultWidth = 44

// Render draws e as a bordered card in the entry's theme. width is the
// outer width including the border.
func Render(e Entry, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	styles := theme.LoadOrDefault(e.ThemeID).Styles()

	// Border (2) and horizontal padding (4) come out of the content width.
	inner := max(width-6, 10)
	body := lipgloss.NewStyle().Width(inner).Render(styles.Body.Render(e.Text))

	lines := []string{
		styles.Title.Render(e.Title),
		"",
		body,
	}
	if !e.Placeholder && !e.Day.IsZero() {
		lines = append(lines, "", styles.Muted.Render(e.Day.Format("Monday, 2 January")))
	}

	return styles.Card.Width(width - 2).Render(strings.Join(lines, "\n"))
}

package theme

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownTheme is returned for ids that are not bundled.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme is a named colour palette.
type Theme struct {
	ID         string `toml:"-"`
	Name       string `toml:"name"`
	Accent     string `toml:"accent"`
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Muted      string `toml:"muted"`
}

// Load returns the bundled theme with the given id.
func Load(id string) (*Theme, error) {
	if !Exists(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	data, err := bundledThemes.ReadFile("themes/" + id + ".toml")
	if err != nil {
		return nil, err
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", id, err)
	}
	t.ID = id
	if t.Name == "" {
		t.Name = id
	}
	return &t, nil
}

// LoadOrDefault returns the theme for id, or the default theme when id is
// empty or unknown.
func LoadOrDefault(id string) *Theme {
	if t, err := Load(id); err == nil {
		return t
	}
	t, err := Load(DefaultThemeID)
	if err != nil {
		// The default theme is embedded; this only happens in a broken build.
		return &Theme{ID: DefaultThemeID, Name: "Default", Accent: "2", Foreground: "7", Muted: "8"}
	}
	return t
}

// Next returns the theme id after id in List order, wrapping around.
func Next(id string) string {
	ids := List()
	for i, candidate := range ids {
		if candidate == id {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Card   lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
}

// Styles builds lipgloss styles for the theme.
func (t *Theme) Styles() Styles {
	accent := lipgloss.Color(t.Accent)
	fg := lipgloss.Color(t.Foreground)
	muted := lipgloss.Color(t.Muted)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	if t.Background != "" {
		card = card.Background(lipgloss.Color(t.Background))
	}

	return Styles{
		Card:   card,
		Title:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Body:   lipgloss.NewStyle().Foreground(fg),
		Muted:  lipgloss.NewStyle().Foreground(muted).Italic(true),
		Accent: lipgloss.NewStyle().Foreground(accent),
	}
}

package widget

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/localize"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/theme"
)

// TitleTable is the localization table for widget chrome.
const TitleTable = "Widget"

// ErrNoCatalog is returned when a set has no loaded catalog.
var ErrNoCatalog = errors.New("no catalog loaded for message set")

// Entry is one renderable widget state.
type Entry struct {
	ID          string      `json:"id"` // ULID, unique per generated entry
	Set         catalog.Set `json:"set"`
	Title       string      `json:"title"`
	ItemID      int         `json:"item_id"`
	TextKey     string      `json:"text_key"`
	Text        string      `json:"text"`
	ThemeID     string      `json:"theme_id"`
	Day         time.Time   `json:"day"`
	GeneratedAt time.Time   `json:"generated_at"`
	Placeholder bool        `json:"placeholder,omitempty"`
}

// Timeline is a list of entries plus when the widget should ask again.
type Timeline struct {
	Entries   []Entry   `json:"entries"`
	RefreshAt time.Time `json:"refresh_at"`
}

// Provider produces widget entries from the daily selection.
type Provider struct {
	svc          *selection.Service
	catalogs     map[catalog.Set]*catalog.Catalog
	bundle       *localize.Bundle
	defaultTheme string
}

// NewProvider creates a Provider. defaultTheme is used until a theme has
// been recorded in the shared namespace.
func NewProvider(svc *selection.Service, catalogs map[catalog.Set]*catalog.Catalog, bundle *localize.Bundle, defaultTheme string) *Provider {
	if defaultTheme == "" {
		defaultTheme = theme.DefaultThemeID
	}
	return &Provider{
		svc:          svc,
		catalogs:     catalogs,
		bundle:       bundle,
		defaultTheme: defaultTheme,
	}
}

// Placeholder returns a generic entry that needs no shared state.
func (p *Provider) Placeholder(set catalog.Set) Entry {
	now := time.Now()
	return Entry{
		ID:          newEntryID(now),
		Set:         set,
		Title:       p.title(set),
		Text:        p.bundle.Lookup("widget.placeholder", TitleTable),
		ThemeID:     p.defaultTheme,
		Day:         selection.StartOfDay(now, p.svc.Location()),
		GeneratedAt: now,
		Placeholder: true,
	}
}

// Snapshot returns the entry for today's item of set.
func (p *Provider) Snapshot(set catalog.Set, now time.Time) (Entry, error) {
	c, ok := p.catalogs[set]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNoCatalog, set)
	}

	item := p.svc.Today(c, now)
	return Entry{
		ID:          newEntryID(now),
		Set:         set,
		Title:       p.title(set),
		ItemID:      item.ID,
		TextKey:     item.Key,
		Text:        p.bundle.Lookup(item.Key, c.Table()),
		ThemeID:     p.ThemeID(),
		Day:         selection.StartOfDay(now, p.svc.Location()),
		GeneratedAt: now,
	}, nil
}

// Timeline returns today's entry and asks for a refresh at the next local
// midnight, when a new item becomes due.
func (p *Provider) Timeline(set catalog.Set, now time.Time) (Timeline, error) {
	e, err := p.Snapshot(set, now)
	if err != nil {
		return Timeline{}, err
	}
	return Timeline{
		Entries:   []Entry{e},
		RefreshAt: selection.NextDay(now, p.svc.Location()),
	}, nil
}

// ThemeID returns the theme last recorded by either process, falling back
// to the configured default.
func (p *Provider) ThemeID() string {
	if id, ok := p.svc.DisplayedTheme(); ok && theme.Exists(id) {
		return id
	}
	return p.defaultTheme
}

// Sets returns the sets this provider can render.
func (p *Provider) Sets() []catalog.Set {
	var out []catalog.Set
	for _, set := range catalog.Sets() {
		if _, ok := p.catalogs[set]; ok {
			out = append(out, set)
		}
	}
	return out
}

// Location returns the time zone day boundaries are computed in.
func (p *Provider) Location() *time.Location {
	return p.svc.Location()
}

// Bundle returns the localization bundle entries are resolved with.
func (p *Provider) Bundle() *localize.Bundle {
	return p.bundle
}

func (p *Provider) title(set catalog.Set) string {
	return p.bundle.Lookup("widget.title."+string(set), TitleTable)
}

func newEntryID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// Package catalog holds the fixed, ordered message catalogs that the daily
// selection draws from. Catalogs are loaded once at start-up and never mutated.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Set identifies a message set. Each set has its own catalog and rotates
// independently of the others.
type Set string

const (
	// SetMotivations is the motivational message shown in the app and widget.
	SetMotivations Set = "motivations"
	// SetReminders is the wording used for meal-logging reminders.
	SetReminders Set = "reminders"
)

// defaultTables maps each set to the localization table its keys live in.
var defaultTables = map[Set]string{
	SetMotivations: "Motivations",
	SetReminders:   "Reminders",
}

// Sets returns all known message sets in display order.
func Sets() []Set {
	return []Set{SetMotivations, SetReminders}
}

// ParseSet converts a user-supplied name into a Set.
func ParseSet(name string) (Set, error) {
	s := Set(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := defaultTables[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSet, name)
	}
	return s, nil
}

// Validation errors. These are start-up contract violations: a bundled or
// overridden catalog that trips them is a packaging bug, not a user error.
var (
	ErrEmpty       = errors.New("catalog is empty")
	ErrDuplicateID = errors.New("catalog contains duplicate id")
	ErrEmptyKey    = errors.New("catalog item has empty text key")
	ErrUnknownSet  = errors.New("unknown message set")
)

// Item is a single selectable catalog entry.
type Item struct {
	ID  int    `yaml:"id" json:"id"`
	Key string `yaml:"key" json:"key"`
}

// Catalog is a validated, immutable, non-empty sequence of items.
type Catalog struct {
	set   Set
	table string
	items []Item
	index map[int]int // item id -> position
}

// New validates items and builds a Catalog. An empty table name falls back
// to the set's default table.
func New(set Set, table string, items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", set, ErrEmpty)
	}
	if table == "" {
		table = defaultTables[set]
	}

	c := &Catalog{
		set:   set,
		table: table,
		items: make([]Item, len(items)),
		index: make(map[int]int, len(items)),
	}
	copy(c.items, items)

	for i, item := range c.items {
		if strings.TrimSpace(item.Key) == "" {
			return nil, fmt.Errorf("%s: item %d: %w", set, item.ID, ErrEmptyKey)
		}
		if _, exists := c.index[item.ID]; exists {
			return nil, fmt.Errorf("%s: id %d: %w", set, item.ID, ErrDuplicateID)
		}
		c.index[item.ID] = i
	}

	return c, nil
}

// Set returns the message set this catalog belongs to.
func (c *Catalog) Set() Set {
	return c.set
}

// Table returns the localization table for the catalog's keys.
func (c *Catalog) Table() string {
	return c.table
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns a copy of the items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// At returns the item at position i.
func (c *Catalog) At(i int) Item {
	return c.items[i]
}

// First returns the first item. It is the designated fallback when the
// shared store cannot be used.
func (c *Catalog) First() Item {
	return c.items[0]
}

// Lookup finds an item by id.
func (c *Catalog) Lookup(id int) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether id is present in the catalog.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.index[id]
	return ok
}

// Package selection picks "today's" catalog item once per calendar day and
// shares the choice with every process that opens the same namespace.
package selection

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/store"
)

// ThemeKey is the namespace key holding the last displayed theme id.
const ThemeKey = "theme.last_used"

// CurrentRecordVersion is the current version of the record schema.
const CurrentRecordVersion = 1

// RecordKeyPrefix prefixes every selection record key.
const RecordKeyPrefix = "selection."

// RecordKey returns the namespace key for a message set's record.
func RecordKey(set catalog.Set) string {
	return RecordKeyPrefix + string(set)
}

// Record is the persisted selection for one message set.
type Record struct {
	SelectedID   int       `json:"selected_id"`
	SelectedDate time.Time `json:"selected_date"` // local midnight of the selection day

	SchemaVersion int `json:"schema_version"`
}

// Options configures a Service.
type Options struct {
	// Location defines the calendar day boundary. Defaults to time.Local.
	Location *time.Location
	// Rand is the random source. Defaults to a randomly seeded PCG.
	Rand *rand.Rand
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service selects one item per calendar day per message set.
//
// A nil namespace is valid: the service then runs degraded and always
// returns each catalog's first item.
type Service struct {
	mu     sync.Mutex
	ns     store.Namespace
	loc    *time.Location
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a Service backed by ns.
func New(ns store.Namespace, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		ns:     ns,
		loc:    opts.Location,
		rng:    opts.Rand,
		logger: opts.Logger,
	}
}

// Location returns the time zone used for day boundaries.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Available reports whether the service has a shared namespace.
func (s *Service) Available() bool {
	return s.ns != nil
}

// Today returns the item selected for now's calendar day, selecting and
// persisting a new one on the first call of a day. It never fails: when
// the namespace cannot be read or written the catalog's first item is
// returned and nothing is persisted.
func (s *Service) Today(c *catalog.Catalog, now time.Time) catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := c.Set()
	if s.ns == nil {
		s.logger.Warn("shared namespace unavailable, using fallback item", "set", set)
		return c.First()
	}

	prev, found, err := s.readRecord(set)
	if err != nil {
		s.logger.Warn("failed to read selection, using fallback item", "set", set, "error", err)
		return c.First()
	}

	if found && SameDay(prev.SelectedDate, now, s.loc) {
		if item, ok := c.Lookup(prev.SelectedID); ok {
			return item
		}
		s.logger.Info("selected id no longer in catalog, selecting again",
			"set", set, "id", prev.SelectedID)
	}

	exclude, hasPrev := 0, found
	if found {
		exclude = prev.SelectedID
	}
	item := pick(c, exclude, hasPrev, s.rng)

	rec := Record{
		SelectedID:    item.ID,
		SelectedDate:  StartOfDay(now, s.loc),
		SchemaVersion: CurrentRecordVersion,
	}
	if err := s.persist(set, rec); err != nil {
		s.logger.Warn("failed to persist selection, using fallback item", "set", set, "error", err)
		return c.First()
	}

	s.logger.Debug("selected daily item", "set", set, "id", item.ID, "day", rec.SelectedDate.Format(time.DateOnly))
	return item
}

// readRecord loads the record for set. A value that doesn't decode is
// reported as absent so the next selection overwrites it.
func (s *Service) readRecord(set catalog.Set) (Record, bool, error) {
	data, ok, err := s.ns.Get(RecordKey(set))
	if err != nil || !ok {
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Info("discarding unreadable selection record", "set", set, "error", err)
		return Record{}, false, nil
	}
	return rec, true, nil
}

// persist writes rec as a single value and flushes it.
func (s *Service) persist(set catalog.Set, rec Record) error {
	if err := store.SetJSON(s.ns, RecordKey(set), rec); err != nil {
		return err
	}
	return s.ns.Synchronize()
}

// Record returns the persisted record for set, if any.
func (s *Service) Record(set catalog.Set) (Record, bool) {
	if s.ns == nil {
		return Record{}, false
	}
	rec, ok, err := s.readRecord(set)
	if err != nil {
		s.logger.Debug("failed to read selection record", "set", set, "error", err)
		return Record{}, false
	}
	return rec, ok
}

// RecordDisplayedTheme stores the active theme id so the other process
// can mirror it. Failures are ignored: the value is cosmetic.
func (s *Service) RecordDisplayedTheme(themeID string) {
	if s.ns == nil {
		return
	}
	if err := store.SetString(s.ns, ThemeKey, themeID); err != nil {
		s.logger.Debug("failed to record displayed theme", "theme", themeID, "error", err)
		return
	}
	if err := s.ns.Synchronize(); err != nil {
		s.logger.Debug("failed to flush displayed theme", "theme", themeID, "error", err)
	}
}

// DisplayedTheme returns the last recorded theme id.
func (s *Service) DisplayedTheme() (string, bool) {
	if s.ns == nil {
		return "", false
	}
	id, ok, err := store.GetString(s.ns, ThemeKey)
	if err != nil || id == "" {
		return "", false
	}
	return id, ok
}

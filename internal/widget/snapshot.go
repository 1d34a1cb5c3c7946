package widget

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/jmylchreest/platepix/internal/store"
)

// CurrentSnapshotVersion is the current version of the snapshot file.
const CurrentSnapshotVersion = 1

// SnapshotFile is what platepixd writes for status bars and other
// consumers that cannot talk D-Bus.
type SnapshotFile struct {
	Entries       []Entry   `json:"entries"`
	RefreshAt     time.Time `json:"refresh_at"`
	WrittenAt     time.Time `json:"written_at"`
	SchemaVersion int       `json:"schema_version"`
}

// DefaultSnapshotPath returns ~/.local/share/platepix/widget.json.
func DefaultSnapshotPath() (string, error) {
	dataDir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "widget.json"), nil
}

// WriteSnapshot writes snap to path atomically via a temp file.
func WriteSnapshot(path string, snap *SnapshotFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if snap.SchemaVersion == 0 {
		snap.SchemaVersion = CurrentSnapshotVersion
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
// Returns (nil, nil) if the file does not exist.
func ReadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var snap SnapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Stale reports whether the snapshot's refresh time has passed.
func (s *SnapshotFile) Stale(now time.Time) bool {
	return !s.RefreshAt.IsZero() && !now.Before(s.RefreshAt)
}

package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML layout of a catalog.
type catalogFile struct {
	Table string `yaml:"table"`
	Items []Item `yaml:"items"`
}

// Parse decodes a YAML catalog for the given set and validates it.
func Parse(set Set, data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s catalog: %w", set, err)
	}
	return New(set, f.Table, f.Items)
}

// LoadBundled loads the catalog embedded in the binary.
func LoadBundled(set Set) (*Catalog, error) {
	data, err := bundled.ReadFile(bundledPath(set))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSet, set)
	}
	return Parse(set, data)
}

// Loader loads catalogs, preferring <dir>/<set>.yaml over the bundled copy.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader. An empty dir disables overrides.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// Load returns the catalog for one set.
func (l *Loader) Load(set Set) (*Catalog, error) {
	if l.dir != "" {
		path := filepath.Join(l.dir, string(set)+".yaml")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			l.logger.Debug("loading catalog override", "set", set, "path", path)
			return Parse(set, data)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read catalog override %s: %w", path, err)
		}
	}
	return LoadBundled(set)
}

// LoadAll loads every known set. Any invalid catalog aborts the load.
func (l *Loader) LoadAll() (map[Set]*Catalog, error) {
	out := make(map[Set]*Catalog, len(Sets()))
	for _, set := range Sets() {
		c, err := l.Load(set)
		if err != nil {
			return nil, err
		}
		out[set] = c
	}
	return out, nil
}

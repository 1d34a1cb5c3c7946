// Package store provides the shared app-group key-value namespace used by
// both the platepix application and the platepixd widget process.
//
// A namespace is addressed by an app-group identifier. Every backend
// guarantees per-key atomicity across processes: a concurrent reader sees
// either the previous value or the new one, never a partial write.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// DefaultGroupID is the app-group identifier shared by app and widget.
const DefaultGroupID = "group.io.github.jmylchreest.platepix"

// Backend selects the namespace implementation.
type Backend string

const (
	// BackendFile stores one file per key using diskv.
	BackendFile Backend = "file"
	// BackendSQLite stores keys in a single SQLite database.
	BackendSQLite Backend = "sqlite"
	// BackendMemory is process-local and only useful for tests and dry runs.
	BackendMemory Backend = "memory"
)

// ValidBackends returns all valid backend values.
func ValidBackends() []Backend {
	return []Backend{BackendFile, BackendSQLite, BackendMemory}
}

// Errors returned by namespaces.
var (
	// ErrUnavailable means the shared namespace could not be opened or used.
	ErrUnavailable = errors.New("shared namespace unavailable")
	ErrInvalidKey  = errors.New("invalid key")
	ErrClosed      = errors.New("namespace is closed")
)

// identPattern matches group ids and keys. Both end up as file names.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Namespace is a shared, durable key-value store.
type Namespace interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	// Set stores value under key atomically.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists all keys in the namespace.
	Keys() ([]string, error)
	// Synchronize flushes pending writes to durable storage.
	Synchronize() error
	// Close releases resources held by the namespace.
	Close() error
}

// Locator is implemented by namespaces that live on disk.
type Locator interface {
	// Location returns the directory (file backend) or database file
	// (sqlite backend) backing the namespace.
	Location() string
}

// Options configures Open.
type Options struct {
	GroupID string
	Backend Backend
	// Root is the directory holding all group namespaces.
	// Empty means GroupsDir().
	Root string
}

// Open opens the namespace described by opts. Every failure is wrapped
// with ErrUnavailable so callers can degrade gracefully.
func Open(opts Options) (Namespace, error) {
	if opts.GroupID == "" {
		opts.GroupID = DefaultGroupID
	}
	if !identPattern.MatchString(opts.GroupID) {
		return nil, fmt.Errorf("%w: invalid group id %q", ErrUnavailable, opts.GroupID)
	}
	if opts.Backend == "" {
		opts.Backend = BackendFile
	}

	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, BackendSQLite:
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnavailable, opts.Backend)
	}

	path, err := NamespacePath(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if opts.Backend == BackendSQLite {
		db, err := openSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	d, err := openDiskv(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NamespacePath returns where a file or sqlite namespace lives on disk.
func NamespacePath(opts Options) (string, error) {
	root := opts.Root
	if root == "" {
		var err error
		if root, err = GroupsDir(); err != nil {
			return "", err
		}
	}
	groupID := opts.GroupID
	if groupID == "" {
		groupID = DefaultGroupID
	}
	if opts.Backend == BackendSQLite {
		return filepath.Join(root, groupID+".db"), nil
	}
	return filepath.Join(root, groupID), nil
}

// DataDir returns the path to the platepix data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/platepix.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "platepix"), nil
}

// GroupsDir returns the directory holding app-group namespaces.
func GroupsDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "groups"), nil
}

// validateKey checks that key is usable by every backend.
func validateKey(key string) error {
	if !identPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

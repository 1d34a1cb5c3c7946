package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync/atomic"

	"github.com/peterbourgon/diskv/v3"
)

// diskvNamespace keeps one file per key in the namespace directory.
// Writes go to a sibling temp directory and are renamed into place, which
// gives per-key atomicity for readers in other processes.
type diskvNamespace struct {
	d      *diskv.Diskv
	dir    string
	closed atomic.Bool
}

func openDiskv(dir string) (*diskvNamespace, error) {
	tmpDir := dir + ".tmp"
	for _, p := range []string{dir, tmpDir} {
		if err := os.MkdirAll(p, 0700); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	// Probe writability up front so callers learn about a read-only or
	// foreign-owned namespace at open time rather than on first Set.
	probe, err := os.CreateTemp(tmpDir, "probe-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &diskvNamespace{
		d: diskv.New(diskv.Options{
			BasePath: dir,
			TempDir:  tmpDir,
			// No cache: the other process writes behind our back.
			CacheSizeMax: 0,
			PathPerm:     0700,
			FilePerm:     0600,
		}),
		dir: dir,
	}, nil
}

func (n *diskvNamespace) Location() string {
	return n.dir
}

func (n *diskvNamespace) Get(key string) ([]byte, bool, error) {
	if n.closed.Load() {
		return nil, false, ErrClosed
	}
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	val, err := n.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (n *diskvNamespace) Set(key string, value []byte) error {
	if n.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return n.d.WriteStream(key, bytes.NewReader(value), true)
}

func (n *diskvNamespace) Delete(key string) error {
	if n.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if err := n.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (n *diskvNamespace) Keys() ([]string, error) {
	if n.closed.Load() {
		return nil, ErrClosed
	}
	var keys []string
	for k := range n.d.Keys(nil) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Synchronize is a no-op: Set already syncs before the rename.
func (n *diskvNamespace) Synchronize() error {
	if n.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (n *diskvNamespace) Close() error {
	n.closed.Store(true)
	return nil
}

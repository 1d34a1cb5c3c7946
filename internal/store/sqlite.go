package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// sqliteNamespace stores all keys of a namespace in one SQLite file. WAL
// mode plus single-row upserts give per-key atomicity across processes.
type sqliteNamespace struct {
	db   *sql.DB
	path string
}

func openSQLite(path string) (*sqliteNamespace, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrUnavailable, err)
	}

	if _, err := db.Exec(createKVTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create kv table: %v", ErrUnavailable, err)
	}

	return &sqliteNamespace{db: db, path: path}, nil
}

func (n *sqliteNamespace) Location() string {
	return n.path
}

func (n *sqliteNamespace) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	var val []byte
	err := n.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (n *sqliteNamespace) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := n.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	return err
}

func (n *sqliteNamespace) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := n.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (n *sqliteNamespace) Keys() ([]string, error) {
	rows, err := n.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Synchronize checkpoints the WAL into the main database file.
func (n *sqliteNamespace) Synchronize() error {
	_, err := n.db.Exec(`PRAGMA wal_checkpoint(PASSIVE)`)
	return err
}

func (n *sqliteNamespace) Close() error {
	return n.db.Close()
}

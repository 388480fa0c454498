package sessionstore

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/hydrofarm/core/session"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS session_keys (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// SQLiteStore keeps the session keys in a local sqlite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ session.Store = (*SQLiteStore)(nil)

// OpenSQLite opens (and creates, owner-only) the database at path. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.Wrap(err, "creating session directory")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, errors.Wrap(err, "creating session database")
		}
		_ = f.Close()
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening session database")
	}
	db.SetMaxOpenConns(1) // one connection keeps ":memory:" a single database
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging session database")
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "migrating session database")
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM session_keys WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %s", key)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO session_keys (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return errors.Wrapf(err, "writing %s", key)
}

func (s *SQLiteStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM session_keys WHERE key IN (?)`, keys)
	if err != nil {
		return errors.Wrap(err, "building delete")
	}
	_, err = s.db.Exec(s.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting session keys")
}

// Keys returns every stored key.
func (s *SQLiteStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.Select(&keys, `SELECT key FROM session_keys ORDER BY key`)
	return keys, errors.Wrap(err, "listing session keys")
}

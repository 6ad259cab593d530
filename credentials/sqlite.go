package credentials

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ Store = (*SQLiteStore)(nil)

const createCredentialsTable = `CREATE TABLE IF NOT EXISTS credentials (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore keeps credentials in a single-table SQLite database, safe to share between processes
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteStore] Expand")
	}
	if err := os.MkdirAll(filepath.Dir(expanded), dirMode); err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteStore] MkdirAll")
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteStore] Open")
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		createCredentialsTable,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "[NewSQLiteStore] %s", stmt)
		}
	}

	if err := os.Chmod(expanded, fileMode); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[NewSQLiteStore] Chmod")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key Key) (string, bool) {
	var value string
	if err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, string(key)).Scan(&value); err != nil {
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) Set(key Key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO credentials (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		string(key), value,
	)
	return errors.Wrap(err, "[SQLiteStore.Set]")
}

func (s *SQLiteStore) Delete(key Key) error {
	_, err := s.db.Exec(`DELETE FROM credentials WHERE key = ?`, string(key))
	return errors.Wrap(err, "[SQLiteStore.Delete]")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

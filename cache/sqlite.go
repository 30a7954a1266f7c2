package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    expires_at INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
`

const (
	sqliteGetQuery = `SELECT value, expires_at FROM entries WHERE key = ?`

	sqliteSetQuery = `
        INSERT INTO entries (key, value, expires_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            expires_at = excluded.expires_at,
            updated_at = excluded.updated_at
    `

	sqlitePurgeQuery = `DELETE FROM entries WHERE expires_at > 0 AND expires_at < ?`
)

// SQLiteStore backs the cache with a local SQLite file for single-node
// deployments without a Redis server. Expired rows are invisible to Get
// and purged periodically.
type SQLiteStore struct {
	db   *sql.DB
	get  *sql.Stmt
	set  *sql.Stmt
	done chan struct{}
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	s := &SQLiteStore{db: db, done: make(chan struct{})}

	if s.get, err = db.Prepare(sqliteGetQuery); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare get statement: %w", err)
	}
	if s.set, err = db.Prepare(sqliteSetQuery); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare set statement: %w", err)
	}

	go s.purgeLoop()

	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64

	err := s.get.QueryRowContext(ctx, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if expiresAt > 0 && expiresAt < time.Now().Unix() {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}
	_, err := s.set.ExecContext(ctx, key, value, expiresAt, time.Now().Unix())
	return err
}

func (s *SQLiteStore) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.get.Close()
	s.set.Close()
	return s.db.Close()
}

func (s *SQLiteStore) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.db.Exec(sqlitePurgeQuery, time.Now().Unix())
		}
	}
}

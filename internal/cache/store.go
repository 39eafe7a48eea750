// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists answers in a SQLite database keyed by canonical
// query keys with per-entry expiry. The store is the only state shared
// across requests; get and put are safe under concurrent use and an expired
// entry reads as a miss without any background sweeper.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const dbFile = "answers.db"

// Store manages the answer cache SQLite database.
type Store struct {
	db         *sql.DB
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

// Entry is one cached answer payload with its lifetime.
type Entry struct {
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

// NewStore opens or creates the cache database at cfg.Dir/answers.db and
// creates the schema if needed. When cfg.CleanupOnStart is set, expired
// rows are removed immediately.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	s := &Store{db: db, maxEntries: maxEntries}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if cfg.CleanupOnStart {
		if _, err := s.CleanupExpired(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("startup cleanup: %w", err)
		}
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_expires_at ON entries(expires_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the entry for key, or nil when the key is absent or expired.
// A miss is a normal return, not an error. Expired rows are deleted lazily
// on read.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	var e Entry
	var createdAt, expiresAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, created_at, expires_at FROM entries WHERE key = ?`, key,
	).Scan(&e.Key, &e.Value, &createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		s.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	if !time.Now().Before(e.ExpiresAt) {
		s.misses.Add(1)
		// Lazy expiry; best-effort delete.
		s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ? AND expires_at = ?`, key, expiresAt)
		return nil, nil
	}

	s.hits.Add(1)
	return &e, nil
}

// Put stores value under key with the given ttl, replacing any previous
// entry atomically. The ttl must be positive so expires_at > created_at
// always holds.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("cache key is empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value=excluded.value, created_at=excluded.created_at, expires_at=excluded.expires_at`,
		key, value,
		now.UTC().Format(time.RFC3339Nano),
		now.Add(ttl).UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	s.writes.Add(1)
	return s.pruneIfNeeded(ctx)
}

// pruneIfNeeded removes the oldest rows when the entry count exceeds the
// configured maximum. Opportunistic space reclamation only; correctness
// never depends on it.
func (s *Store) pruneIfNeeded(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&count); err != nil {
		return fmt.Errorf("counting cache entries: %w", err)
	}
	if count <= s.maxEntries {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE key IN (
			SELECT key FROM entries ORDER BY created_at ASC LIMIT ?
		)`, count-s.maxEntries)
	if err != nil {
		return fmt.Errorf("pruning cache entries: %w", err)
	}
	return nil
}

// Delete removes the entry for key if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// CleanupExpired removes all expired rows and returns how many were removed.
func (s *Store) CleanupExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE expires_at <= ?`, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("cleaning up expired entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed entries: %w", err)
	}
	return int(n), nil
}

// Stats summarizes cache activity for this process plus the stored entry count.
type Stats struct {
	Hits    int64 `json:"hits" yaml:"hits"`
	Misses  int64 `json:"misses" yaml:"misses"`
	Writes  int64 `json:"writes" yaml:"writes"`
	Entries int   `json:"entries" yaml:"entries"`
}

// HitRate returns the fraction of lookups served from cache.
func (st Stats) HitRate() float64 {
	total := st.Hits + st.Misses
	if total == 0 {
		return 0
	}
	return float64(st.Hits) / float64(total)
}

// Stats returns current cache statistics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Writes: s.writes.Load(),
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&st.Entries); err != nil {
		return Stats{}, fmt.Errorf("counting cache entries: %w", err)
	}
	return st, nil
}

// entries returns all rows ordered by creation time, newest first.
func (s *Store) entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, created_at, expires_at FROM entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var createdAt, expiresAt string
		if err := rows.Scan(&e.Key, &e.Value, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		e.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expiresAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExportYAML writes all entries to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.entries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling entries: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes all entries to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	entries, err := s.entries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entries: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

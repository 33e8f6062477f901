// Package store provides the on-disk persistence layer: the TTL response
// cache for online lookups and the full-text names index.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

// DefaultCacheTTL is how long cached responses stay fresh.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Cache is a SQLite-backed response cache with TTL expiry. Entries are
// keyed by the SHA-256 of the request URL, so the same logical request
// always lands on the same row regardless of parameter ordering upstream.
type Cache struct {
	db  *sql.DB
	ttl time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Entries int   `json:"entries"`
	Expired int   `json:"expired"`
	Bytes   int64 `json:"bytes"`
}

// CacheKey returns the cache key for a request URL.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// OpenCache opens (or creates) the response cache at path. An empty path
// opens an in-memory cache for testing. A non-positive ttl falls back to
// DefaultCacheTTL.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, seqerrors.New(seqerrors.ErrCodeCacheOpen,
				fmt.Sprintf("cannot create cache directory %s", dir), err)
		}
		// Journal mode and timeouts are applied via PRAGMA below; the
		// modernc driver does not read mattn-style DSN parameters.
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot open response cache", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL mode must be set via PRAGMA for modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot configure response cache", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key        TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		payload    BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_responses_created ON responses(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot initialize cache schema", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached payload for key, or (nil, false) when the entry
// is missing or older than the TTL. Expired entries are left in place and
// reaped lazily by Prune.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	cutoff := c.now().Add(-c.ttl).Unix()

	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM responses WHERE key = ? AND created_at >= ?`,
		key, cutoff).Scan(&payload)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Put stores payload under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key string, payload []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (key, created_at, payload) VALUES (?, ?, ?)`,
		key, c.now().Unix(), payload)
	if err != nil {
		return seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot write cache entry", err)
	}
	return nil
}

// Prune deletes entries older than the TTL and returns how many were
// removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM responses WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot prune cache", err)
	}
	return res.RowsAffected()
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot clear cache", err)
	}
	return nil
}

// Stats reports entry counts and total payload size.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	cutoff := c.now().Add(-c.ttl).Unix()

	var stats CacheStats
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(created_at < ?), 0),
		       COALESCE(SUM(LENGTH(payload)), 0)
		FROM responses`, cutoff).Scan(&stats.Entries, &stats.Expired, &stats.Bytes)
	if err != nil {
		return CacheStats{}, seqerrors.New(seqerrors.ErrCodeCacheOpen, "cannot read cache stats", err)
	}
	return stats, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

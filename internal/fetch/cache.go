package fetch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at TEXT NOT NULL
)`

// Cache stores fetched pages in SQLite.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenCache opens or creates the cache database at path. Entries older than
// ttl are treated as missing; a zero ttl keeps entries forever.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create pages table: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached body for url. ok is false when the page is not
// cached or has expired.
func (c *Cache) Get(ctx context.Context, url string) (body []byte, ok bool, err error) {
	var fetchedAt string
	row := c.db.QueryRowContext(ctx, "SELECT body, fetched_at FROM pages WHERE url = ?", url)
	if err := row.Scan(&body, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query page %s: %w", url, err)
	}

	if c.ttl > 0 {
		ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil || c.now().Sub(ts) > c.ttl {
			return nil, false, nil
		}
	}
	return body, true, nil
}

// Put stores body for url, replacing any previous entry. Empty bodies are
// rejected with ErrEmptyBody.
func (c *Cache) Put(ctx context.Context, url string, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("caching %s: %w", url, ErrEmptyBody)
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pages (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, c.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store page %s: %w", url, err)
	}
	return nil
}

// Delete removes url from the cache. It is a no-op on a nil cache.
func (c *Cache) Delete(ctx context.Context, url string) error {
	if c == nil {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM pages WHERE url = ?", url); err != nil {
		return fmt.Errorf("delete page %s: %w", url, err)
	}
	return nil
}

// Len returns the number of cached pages, expired ones included.
func (c *Cache) Len(ctx context.Context) (int, error) {
	if c == nil {
		return 0, nil
	}
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

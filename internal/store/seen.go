package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SeenStore keeps the seen-set in SQLite.
type SeenStore struct {
	db *sql.DB
}

// OpenSeenStore opens (creating if needed) the database at path and brings
// its schema up to date.
func OpenSeenStore(ctx context.Context, path string) (*SeenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create seen dir: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open seen db: %w", err)
	}
	// one writer; a run is a handful of statements
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open seen db %s: %w", path, err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate seen db: %w", err)
	}
	return &SeenStore{db: db}, nil
}

func (s *SeenStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SeenStore) LoadSeen(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM seen_urls;`)
	if err != nil {
		return nil, fmt.Errorf("load seen: %w", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out[u] = struct{}{}
	}
	return out, rows.Err()
}

// MarkSeen merges urls into the set in one transaction.
func (s *SeenStore) MarkSeen(ctx context.Context, urls []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO seen_urls(url, first_seen) VALUES(?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, u, now); err != nil {
			return fmt.Errorf("mark seen %q: %w", u, err)
		}
	}
	return tx.Commit()
}

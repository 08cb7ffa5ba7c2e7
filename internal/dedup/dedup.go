// Package dedup remembers which posting URLs have already been seen.
package dedup

import (
	"context"
	"fmt"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/store"
)

// Store is a persisted set of URLs.
type Store interface {
	// LoadSeen returns the current set. Missing or unreadable state yields an
	// empty set; only I/O failures are errors.
	LoadSeen(ctx context.Context) (map[string]struct{}, error)
	// MarkSeen unions urls into the set and persists it.
	MarkSeen(ctx context.Context, urls []string) error
}

// FilterNew returns the postings whose URL is not in the store, in input
// order. It does not modify the store.
func FilterNew(ctx context.Context, s Store, ps []domain.Posting) ([]domain.Posting, error) {
	seen, err := s.LoadSeen(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Posting, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.URL]; !ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Open returns the configured backend. The caller closes it.
func Open(ctx context.Context, cfg config.Config) (Store, func() error, error) {
	path := cfg.ResolvePath(cfg.Dedup.Path)
	switch cfg.Dedup.Backend {
	case "", config.BackendFile:
		return NewFileStore(path), func() error { return nil }, nil
	case config.BackendSQLite:
		s, err := store.OpenSeenStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown dedup backend %q", cfg.Dedup.Backend)
	}
}

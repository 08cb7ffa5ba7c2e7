package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

// FileStore keeps the set as a JSON array of URLs. Writes replace the file
// atomically (temp file + rename) while holding an advisory lock.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) LoadSeen(ctx context.Context) (map[string]struct{}, error) {
	out := map[string]struct{}{}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen file: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(b, &urls); err != nil {
		log.Printf("[dedup] seen file %s is corrupt, starting empty: %v", s.path, err)
		return out, nil
	}
	for _, u := range urls {
		out[u] = struct{}{}
	}
	return out, nil
}

func (s *FileStore) MarkSeen(ctx context.Context, urls []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create seen dir: %w", err)
	}

	locked, err := s.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock seen file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock seen file: %s is held by another process", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()

	seen, err := s.LoadSeen(ctx)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if u != "" {
			seen[u] = struct{}{}
		}
	}

	all := make([]string, 0, len(seen))
	for u := range seen {
		all = append(all, u)
	}
	sort.Strings(all)

	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path, b)
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write seen file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write seen file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync seen file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close seen file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace seen file: %w", err)
	}
	return nil
}

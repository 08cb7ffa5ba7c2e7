package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeenStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "seen.db")

	s, err := OpenSeenStore(ctx, path)
	require.NoError(t, err)

	seen, err := s.LoadSeen(ctx)
	require.NoError(t, err)
	assert.Empty(t, seen)

	require.NoError(t, s.MarkSeen(ctx, nil))
	require.NoError(t, s.MarkSeen(ctx, []string{"https://x/job/1", "https://x/job/2"}))
	require.NoError(t, s.MarkSeen(ctx, []string{"https://x/job/2", "https://x/job/3", ""}))
	require.NoError(t, s.Close())

	// reopen: state survives and migration is idempotent
	s, err = OpenSeenStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	seen, err = s.LoadSeen(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Contains(t, seen, "https://x/job/1")
	assert.Contains(t, seen, "https://x/job/3")
}

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"jobsniper/internal/secrets"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "--data-dir", dir, "score", "Senior Publicist",
		"Entertainment publicity in Los Angeles, hybrid. $120,000 - $150,000")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 155 (min 60, kept)")
	assert.Contains(t, out, "location: 📍 Los Angeles (Likely Hybrid) - Hybrid")
	assert.Contains(t, out, "salary: $120,000 - $150,000")
	assert.FileExists(t, filepath.Join(dir, "config.yml"), "first run writes the default config")

	out, err = execute(t, "", "--data-dir", dir, "score", "Marketing Coordinator")
	require.NoError(t, err)
	assert.Contains(t, out, "DISQUALIFIED")
}

func TestScoreCommandNeedsTitle(t *testing.T) {
	_, err := execute(t, "", "--data-dir", t.TempDir(), "score")
	assert.Error(t, err)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: x\n    kind: carrier-pigeon\n"), 0o644))

	_, err := execute(t, "", "--config", path, "score", "PR Manager")
	assert.ErrorContains(t, err, "invalid config")
}

func TestCheckBoardsWithoutBoards(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	cfg := "scoring:\n  tier1: [Publicist]\nsources:\n  - name: Feed\n    kind: rss\n    url: https://example.com/feed\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	out, err := execute(t, "", "--config", path, "check-boards")
	require.NoError(t, err)
	assert.Contains(t, out, "no ATS boards configured")
}

func TestSecretsSet(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.GeminiAPIKey, "")

	out, err := execute(t, "abc123\n", "secrets", "set", "gemini_api_key")
	require.NoError(t, err)
	assert.Contains(t, out, "stored GEMINI_API_KEY")
	assert.Equal(t, "abc123", secrets.Lookup(secrets.GeminiAPIKey))

	_, err = execute(t, "x\n", "secrets", "set", "AWS_KEY")
	assert.ErrorContains(t, err, "unknown secret")

	_, err = execute(t, "", "secrets", "delete", secrets.GeminiAPIKey)
	require.NoError(t, err)
	assert.Empty(t, secrets.Lookup(secrets.GeminiAPIKey))
}

func TestRunEveryStopsOnSeenSetFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	// the seen file's parent is a regular file, so it can never be read or written
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocker"), nil, 0o644))
	path := filepath.Join(dir, "config.yml")
	cfg := "scoring:\n  tier1: [Publicist]\n" +
		"sources:\n  - name: Feed\n    kind: rss\n    url: " + srv.URL + "\n" +
		"dedup:\n  path: blocker/seen_jobs.json\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	_, err := execute(t, "", "--config", path, "run", "--dry-run", "--every", "10ms")
	assert.ErrorContains(t, err, "seen set")
}

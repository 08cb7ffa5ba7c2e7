package greenhouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsniper/internal/config"
	"jobsniper/internal/scrape/util"
)

func TestFetchBoard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a24", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/a24/jobs/4001?gh_src=x">Publicity Manager</a>
			<a href="/a24/jobs/4001">Publicity Manager</a>
			<a href="/a24/jobs/4002">Apply now</a>
			<a href="/a24/about">About</a>
		</body></html>`))
	})
	mux.HandleFunc("/a24/jobs/4001", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Publicity Manager</h1>
			<div class="location">Los Angeles, CA</div>
			<div id="content"><p>Run film campaigns.</p></div></body></html>`))
	})
	mux.HandleFunc("/a24/jobs/4002", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Head of Communications</h1><div id="content">Remote</div></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	s.BoardBase = srv.URL

	jobs, err := s.FetchBoard(context.Background(), config.Board{Name: "A24", Type: config.BoardGreenhouse, Slug: "a24", Boost: 5})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "Publicity Manager", jobs[0].Title)
	assert.Equal(t, "A24", jobs[0].Company)
	assert.Equal(t, "Los Angeles, CA", jobs[0].LocationHint)
	assert.Equal(t, "Run film campaigns.", jobs[0].Description)
	assert.Equal(t, 5, jobs[0].Boost)

	assert.Equal(t, "Head of Communications", jobs[1].Title)
}

func TestFetchBoardNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	s.BoardBase = srv.URL
	_, err := s.FetchBoard(context.Background(), config.Board{Name: "Gone", Slug: "gone"})
	assert.Error(t, err)
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "4001", extractJobID("https://boards.greenhouse.io/a24/jobs/4001?gh_src=x"))
	assert.Equal(t, "", extractJobID("https://boards.greenhouse.io/a24/jobs/"))
	assert.Equal(t, "", extractJobID("https://boards.greenhouse.io/a24"))
}

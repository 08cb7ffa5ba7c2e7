package lever

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
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/postings/spotify", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		_, _ = w.Write([]byte(`[
			{"id":"a1","text":"Senior Publicist","hostedUrl":"https://jobs.lever.co/spotify/a1",
			 "categories":{"location":"Los Angeles, CA","team":"Comms"},"workplaceType":"hybrid",
			 "descriptionPlain":"Lead media relations."},
			{"id":"a2","text":"Data Engineer","hostedUrl":"https://jobs.lever.co/spotify/a2",
			 "description":"<p>Pipelines</p>"},
			{"id":"","text":"No id","hostedUrl":"https://jobs.lever.co/spotify/x"}
		]`))
	}))
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	s.APIBase = srv.URL

	jobs, err := s.FetchBoard(context.Background(), config.Board{Name: "Spotify", Slug: "spotify"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "Senior Publicist", jobs[0].Title)
	assert.Equal(t, "Spotify", jobs[0].Company)
	assert.Equal(t, "Lead media relations. Hybrid", jobs[0].Description)
	assert.Equal(t, "Los Angeles, CA", jobs[0].LocationHint)
	assert.Equal(t, "Pipelines", jobs[1].Description)
}

func TestFetchBoardUnknownSlug(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	s.APIBase = srv.URL
	_, err := s.FetchBoard(context.Background(), config.Board{Name: "Nope", Slug: "nope"})
	assert.Error(t, err)
}

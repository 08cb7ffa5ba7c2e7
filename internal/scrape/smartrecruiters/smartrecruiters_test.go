package smartrecruiters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsniper/internal/config"
	"jobsniper/internal/scrape/util"
)

func TestFetchBoardPaginates(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/companies/acme/postings", r.URL.Path)
		off := r.URL.Query().Get("offset")
		offsets = append(offsets, off)
		fmt.Fprintf(w, `{"totalFound":150,"content":[
			{"id":"j%s","name":"Communications Director","location":{"city":"Burbank","region":"CA","country":"us","hybrid":true},
			 "department":{"label":"Corporate Affairs"}}]}`, off)
	}))
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	s.APIBase = srv.URL
	s.JobsBase = "https://jobs.smartrecruiters.com"

	jobs, err := s.FetchBoard(context.Background(), config.Board{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "100"}, offsets)
	require.Len(t, jobs, 2)
	assert.Equal(t, "https://jobs.smartrecruiters.com/acme/j0", jobs[0].URL)
	assert.Equal(t, "Burbank, CA, us", jobs[0].LocationHint)
	assert.Equal(t, "Communications Director Corporate Affairs Burbank, CA, us Hybrid", jobs[0].Description)
}

func TestFetchBoardStopsOnEmptyPage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	s.APIBase = srv.URL
	jobs, err := s.FetchBoard(context.Background(), config.Board{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 1, calls)
}

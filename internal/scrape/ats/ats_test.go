package ats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/util"
)

type fakeBoards map[string][]domain.Posting

func (f fakeBoards) FetchBoard(_ context.Context, b config.Board) ([]domain.Posting, error) {
	if b.Slug == "down" {
		return nil, errors.New("503")
	}
	return f[b.Slug], nil
}

func TestFetchKeepsBoardOrderAndPartialResults(t *testing.T) {
	fake := fakeBoards{
		"a": {{Title: "A1", URL: "https://x/a1"}, {Title: "A2", URL: "https://x/a2", Boost: 3}},
		"c": {{Title: "C1", URL: "https://x/c1"}},
	}
	src := config.Source{
		Name:   "Company Boards",
		Kind:   config.KindATS,
		Boost:  7,
		Params: map[string]string{"workers": "3"},
		Boards: []config.Board{
			{Name: "A", Type: "fake", Slug: "a"},
			{Name: "B", Type: "fake", Slug: "down"},
			{Name: "C", Type: "fake", Slug: "c"},
		},
	}

	res, err := New(src, Registry{"fake": fake}).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B (fake)")

	require.Len(t, res.Leads, 3)
	assert.Equal(t, []string{"A1", "A2", "C1"}, []string{res.Leads[0].Title, res.Leads[1].Title, res.Leads[2].Title})
	assert.Equal(t, "Company Boards", res.Leads[0].Source)
	assert.Equal(t, 7, res.Leads[0].Boost)
	assert.Equal(t, 10, res.Leads[1].Boost, "board boost adds to the source boost")
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := Registry{}.FetchBoard(context.Background(), config.Board{Name: "X", Type: "icims"})
	assert.Error(t, err)
}

func TestClassName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<div class="job-card"><a href="/careers/101"><span class="t">PR Director</span></a><span class="loc">Culver City, CA</span></div>
			<div class="job-card"><a href="/careers/102"><span class="t">Media Relations Lead</span></a><span class="loc">Remote</span></div>
			<div class="job-card"><span class="t">No link here</span></div>
		</body></html>`))
	}))
	defer srv.Close()

	b := config.Board{
		Name:   "Studio",
		Type:   config.BoardClassName,
		URL:    srv.URL + "/careers",
		Params: map[string]string{"item": ".job-card", "title": ".t", "location": ".loc"},
	}
	jobs, err := NewClassName(util.NewClient(config.Fetch{})).FetchBoard(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "PR Director", jobs[0].Title)
	assert.Equal(t, srv.URL+"/careers/101", jobs[0].URL)
	assert.Equal(t, "Culver City, CA", jobs[0].LocationHint)
	assert.Equal(t, "Studio", jobs[1].Company)

	b.Params = nil
	_, err = NewClassName(util.NewClient(config.Fetch{})).FetchBoard(context.Background(), b)
	assert.Error(t, err)
}

package workday

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsniper/internal/config"
	"jobsniper/internal/scrape/util"
)

func TestParseBoardURL(t *testing.T) {
	b, err := parseBoardURL("https://netflix.wd1.myworkdayjobs.com/en-us/Netflix")
	require.NoError(t, err)
	assert.Equal(t, "netflix", b.Tenant)
	assert.Equal(t, "Netflix", b.Site)
	assert.Equal(t, "en-US", b.Locale)
	assert.Equal(t, "https://netflix.wd1.myworkdayjobs.com/wday/cxs/netflix/Netflix/jobs?locale=en-US", b.jobsEndpoint())
	assert.Equal(t, "https://netflix.wd1.myworkdayjobs.com/en-US/Netflix/job/LA/PR_R1", b.absoluteJobURL("/job/LA/PR_R1"))

	b, err = parseBoardURL("https://disney.wd5.myworkdayjobs.com/disneycareer")
	require.NoError(t, err)
	assert.Equal(t, "", b.Locale)
	assert.Equal(t, "https://disney.wd5.myworkdayjobs.com/wday/cxs/disney/disneycareer/jobs", b.jobsEndpoint())

	_, err = parseBoardURL("https://localhost/x")
	assert.Error(t, err)
	_, err = parseBoardURL("")
	assert.Error(t, err)
}

func TestFetchBoard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en-US/careers", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: csrfName, Value: "tok", Path: "/"})
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/wday/cxs/127/careers/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok", r.Header.Get("X-Calypso-Csrf-Token"))
		assert.Equal(t, "en-US", r.URL.Query().Get("locale"))

		var req wdRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, pageSize, req.Limit)

		_ = json.NewEncoder(w).Encode(wdResponse{Total: 2, JobPostings: []wdPosting{
			{Title: "Director, Studio Publicity", ExternalPath: "/job/Burbank/Director_R1", LocationsText: "Burbank, CA", RemoteType: "Hybrid"},
			{Title: "", ExternalPath: "/job/x"},
			{Title: "Publicist", ExternalPath: "/job/NY/Publicist_R2", LocationsText: "New York"},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	jobs, err := s.FetchBoard(context.Background(), config.Board{Name: "Studio", Type: config.BoardWorkday, URL: srv.URL + "/en-US/careers"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "Director, Studio Publicity", jobs[0].Title)
	assert.Equal(t, srv.URL+"/en-US/careers/job/Burbank/Director_R1", jobs[0].URL)
	assert.Equal(t, "Burbank, CA", jobs[0].LocationHint)
	assert.Contains(t, jobs[0].Description, "Hybrid")
	assert.Equal(t, "Studio", jobs[0].Company)
}

func TestFetchBoardBlockedHostIsSkipped(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Attention Required! | Cloudflare"))
	}))
	defer srv.Close()

	s := New(util.NewClient(config.Fetch{}))
	b := config.Board{Name: "Studio", URL: srv.URL + "/careers"}

	_, err := s.FetchBoard(context.Background(), b)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = s.FetchBoard(context.Background(), b)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 1, calls)
}

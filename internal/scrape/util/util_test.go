package util

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsniper/internal/config"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://Jobs.Example.com/job/1?utm_source=x&b=2&a=1#apply", "https://jobs.example.com/job/1?a=1&b=2"},
		{"  https://x/job/1  ", "https://x/job/1"},
		{"https://www.linkedin.com/comm/jobs/view/1?currentJobId=9&trk=abc", "https://www.linkedin.com/comm/jobs/view/1?currentJobId=9"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), tt.in)
	}
}

func TestAbsolute(t *testing.T) {
	base := "https://www.entertainmentcareers.net/jobs/public-relations/"
	assert.Equal(t, "https://www.entertainmentcareers.net/job/123", Absolute(base, "/job/123"))
	assert.Equal(t, "https://www.entertainmentcareers.net/jobs/public-relations/job-9", Absolute(base, "job-9"))
	assert.Equal(t, "https://other.com/x", Absolute(base, "https://other.com/x"))
	assert.Equal(t, "", Absolute(base, "mailto:a@b.c"))
	assert.Equal(t, "", Absolute(base, "#top"))
	assert.Equal(t, "", Absolute("not a url", "/job/1"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "PR Manager - LA", CleanText("  PR Manager \n - \tLA "))
	assert.Equal(t, "Public Relations", StripHTML("<p>Public <b>Relations</b></p><script>x()</script>"))
	assert.Equal(t, "Los Angeles, CA", NormalizeLocation("Location: Los Angeles, CA, los angeles"))
}

func TestFindLocation(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><h1>PR Manager</h1><p>Location: Culver City, CA | Full time</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Culver City, CA", FindLocation(doc))

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><div class="location">Remote</div></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Remote", FindLocation(doc))
}

func TestClientRotatesIdentityAndReportsStatus(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		if r.URL.Path == "/missing" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(config.Fetch{})
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/x", &out))
	assert.True(t, out.OK)
	assert.Contains(t, userAgents, gotUA)
	assert.Contains(t, acceptLanguages, gotLang)

	err := c.GetJSON(context.Background(), srv.URL+"/missing", &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestClientWithJarKeepsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	}))
	defer srv.Close()

	base := NewClient(config.Fetch{})
	assert.Nil(t, base.Jar())

	c := base.WithJar()
	res, err := c.Get(context.Background(), srv.URL, "")
	require.NoError(t, err)
	res.Body.Close()

	u := res.Request.URL
	cookies := c.Jar().Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestPauseHonorsContext(t *testing.T) {
	c := NewClient(config.Fetch{MinDelayMS: 60_000, MaxDelayMS: 60_000})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Pause(ctx), context.Canceled)
}

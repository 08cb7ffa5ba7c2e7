package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobsniper/internal/config"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.8",
	"en-GB,en;q=0.9,en-US;q=0.8",
}

const (
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptJSON = "application/json"
	AcceptFeed = "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8"
)

// StatusError is returned for HTTP responses with a 4xx/5xx status.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
	}
	return fmt.Sprintf("GET %s: status %d body=%s", e.URL, e.Code, e.Body)
}

// Client is the HTTP client shared by all connectors. Every request gets a
// rotated browser identity and waits on its host's limiter; page loads also
// sleep a random delay first.
type Client struct {
	hc       *http.Client
	limiter  *HostLimiter
	minDelay time.Duration
	maxDelay time.Duration
}

func NewClient(f config.Fetch) *Client {
	timeout := time.Duration(f.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		hc:       &http.Client{Timeout: timeout},
		limiter:  NewHostLimiter(f.HostRPS, f.HostBurst),
		minDelay: time.Duration(f.MinDelayMS) * time.Millisecond,
		maxDelay: time.Duration(f.MaxDelayMS) * time.Millisecond,
	}
}

// WithJar returns a client sharing c's limiter and pacing but holding its own
// cookie jar, for sources that need a session.
func (c *Client) WithJar() *Client {
	jar, _ := cookiejar.New(nil)
	cp := *c
	hc := *c.hc
	hc.Jar = jar
	cp.hc = &hc
	return &cp
}

// Jar returns the cookie jar, nil unless the client came from WithJar.
func (c *Client) Jar() http.CookieJar { return c.hc.Jar }

// Do sends req after setting identity headers the caller did not set and
// waiting for the host limiter.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", acceptLanguages[rand.IntN(len(acceptLanguages))])
	}
	if err := c.limiter.WaitURL(req.Context(), req.URL.String()); err != nil {
		return nil, err
	}
	return c.hc.Do(req)
}

// Get issues a GET with the given Accept header and fails on 4xx/5xx.
// The caller closes the body.
func (c *Client) Get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	res, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		preview, _ := io.ReadAll(io.LimitReader(res.Body, 240))
		res.Body.Close()
		return nil, &StatusError{URL: rawURL, Code: res.StatusCode, Body: Truncate(string(preview), 240)}
	}
	return res, nil
}

// GetJSON decodes the JSON body of rawURL into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	res, err := c.Get(ctx, rawURL, AcceptJSON)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// GetHTML loads a page after a randomized politeness delay.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := c.Pause(ctx); err != nil {
		return nil, err
	}
	res, err := c.Get(ctx, rawURL, AcceptHTML)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// Pause sleeps a random duration in [minDelay, maxDelay].
func (c *Client) Pause(ctx context.Context) error {
	d := c.minDelay
	if span := c.maxDelay - c.minDelay; span > 0 {
		d += time.Duration(rand.Int64N(int64(span) + 1))
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/util"
)

// ErrBlocked means the host answered with a Cloudflare challenge. The host is
// skipped for the rest of the run.
var ErrBlocked = errors.New("workday blocked by cloudflare")

const (
	pageSize  = 50
	maxOffset = 5000
	csrfName  = "CALYPSO_CSRF_TOKEN"
)

type Scraper struct {
	c *util.Client

	mu          sync.Mutex
	blockedHost map[string]bool
}

func New(c *util.Client) *Scraper {
	return &Scraper{c: c, blockedHost: map[string]bool{}}
}

type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
	Page   string
}

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	RemoteType    string   `json:"remoteType"`
	BulletFields  []string `json:"bulletFields"`
}

func (s *Scraper) blocked(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedHost[host]
}

func (s *Scraper) block(host string) {
	s.mu.Lock()
	s.blockedHost[host] = true
	s.mu.Unlock()
}

// FetchBoard bootstraps a session on the public board page (which sets the
// CSRF cookie) and then pages through the CXS jobs endpoint.
func (s *Scraper) FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error) {
	bd, err := parseBoardURL(b.URL)
	if err != nil {
		return nil, err
	}
	if s.blocked(bd.Host) {
		return nil, ErrBlocked
	}

	hc := s.c.WithJar()
	csrf, err := bootstrapSession(ctx, hc, bd.Page)
	if errors.Is(err, ErrBlocked) {
		s.block(bd.Host)
		return nil, ErrBlocked
	}
	if err != nil {
		log.Printf("[ats:workday] company=%q bootstrap err=%v (continuing without csrf)", b.Name, err)
	}

	endpoint := bd.jobsEndpoint()
	var out []domain.Posting
	for offset := 0; offset <= maxOffset; offset += pageSize {
		jr, err := s.postJobs(ctx, hc, bd, endpoint, csrf, offset)
		if err != nil {
			return out, err
		}
		if len(jr.JobPostings) == 0 {
			break
		}
		for _, p := range jr.JobPostings {
			title := util.CleanText(p.Title)
			jobURL := bd.absoluteJobURL(p.ExternalPath)
			if title == "" || jobURL == "" {
				continue
			}
			loc := util.NormalizeLocation(p.LocationsText)
			out = append(out, domain.Posting{
				Title:        title,
				Company:      util.FirstNonEmpty(b.Name, domain.UnknownCompany),
				URL:          jobURL,
				Description:  util.CleanText(strings.Join(append([]string{title, loc, p.RemoteType}, p.BulletFields...), " ")),
				Boost:        b.Boost,
				LocationHint: loc,
			})
		}
		if jr.Total > 0 && offset+pageSize >= jr.Total {
			break
		}
	}
	return out, nil
}

func (s *Scraper) postJobs(ctx context.Context, hc *util.Client, bd board, endpoint, csrf string, offset int) (wdResponse, error) {
	var jr wdResponse
	payload, _ := json.Marshal(wdRequest{AppliedFacets: map[string]any{}, Limit: pageSize, Offset: offset})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return jr, err
	}
	req.Header.Set("Accept", util.AcceptJSON)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", fmt.Sprintf("%s://%s", bd.Scheme, bd.Host))
	req.Header.Set("Referer", bd.Page)
	req.Header.Set("Accept-Language", util.FirstNonEmpty(bd.Locale, "en-US"))
	if csrf != "" {
		req.Header.Set("X-Calypso-Csrf-Token", csrf)
	}

	res, err := hc.Do(req)
	if err != nil {
		return jr, fmt.Errorf("workday post jobs: %w", err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)

	if res.StatusCode >= 400 {
		if looksLikeCloudflareBlock(res, string(data)) {
			s.block(bd.Host)
			return jr, ErrBlocked
		}
		return jr, fmt.Errorf("workday status %d body=%s", res.StatusCode, util.Truncate(string(data), 240))
	}
	if err := json.Unmarshal(data, &jr); err != nil {
		return jr, fmt.Errorf("workday decode: %w body=%s", err, util.Truncate(string(data), 240))
	}
	return jr, nil
}

func bootstrapSession(ctx context.Context, hc *util.Client, page string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", util.AcceptHTML)

	res, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	_, _ = io.Copy(io.Discard, res.Body)
	if looksLikeCloudflareBlock(res, string(preview)) {
		return "", ErrBlocked
	}

	u, _ := url.Parse(page)
	for _, c := range hc.Jar().Cookies(u) {
		if c.Name == csrfName && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("workday bootstrap: missing %s cookie (status=%d)", csrfName, res.StatusCode)
}

// parseBoardURL accepts https://<tenant>.wd5.myworkdayjobs.com[/<locale>]/<site>.
func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("unexpected path %q", u.Path)
	}
	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = strings.ToLower(segs[0][:2]) + "-" + strings.ToUpper(segs[0][3:])
		segs = segs[1:]
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: parts[0],
		Site:   segs[len(segs)-1],
		Locale: locale,
		Page:   u.String(),
	}, nil
}

func looksLikeLocale(s string) bool {
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	for _, c := range s[:2] + s[3:] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

func (b board) jobsEndpoint() string {
	base := fmt.Sprintf("%s://%s/wday/cxs/%s/%s/jobs", b.Scheme, b.Host, b.Tenant, b.Site)
	if b.Locale == "" {
		return base
	}
	return base + "?locale=" + url.QueryEscape(b.Locale)
}

func (b board) absoluteJobURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	site := "/" + b.Site
	if b.Locale != "" {
		site = "/" + b.Locale + site
	}
	return fmt.Sprintf("%s://%s%s%s", b.Scheme, b.Host, site, path)
}

func looksLikeCloudflareBlock(res *http.Response, bodyPreview string) bool {
	server := strings.ToLower(res.Header.Get("Server"))
	if strings.Contains(server, "cloudflare") && res.Header.Get("CF-RAY") != "" && res.StatusCode >= 400 {
		return true
	}
	low := strings.ToLower(bodyPreview)
	if strings.Contains(low, "/cdn-cgi/challenge") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare")) {
		return true
	}
	return res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests
}

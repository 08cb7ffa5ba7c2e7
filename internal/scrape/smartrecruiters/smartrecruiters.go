package smartrecruiters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/util"
)

const (
	DefaultAPIBase  = "https://api.smartrecruiters.com"
	DefaultJobsBase = "https://jobs.smartrecruiters.com"

	pageSize  = 100
	maxOffset = 5000
)

type Scraper struct {
	c        *util.Client
	APIBase  string
	JobsBase string
}

func New(c *util.Client) *Scraper {
	return &Scraper{c: c, APIBase: DefaultAPIBase, JobsBase: DefaultJobsBase}
}

// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type posting struct {
	ID       string `json:"id"`
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Ref      string `json:"ref"`
	Location struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
		Hybrid  bool   `json:"hybrid"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

func (s *Scraper) FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error) {
	slug := strings.TrimSpace(b.Slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug")
	}
	base := fmt.Sprintf("%s/v1/companies/%s/postings", strings.TrimRight(s.APIBase, "/"), url.PathEscape(slug))

	var out []domain.Posting
	for offset := 0; offset <= maxOffset; offset += pageSize {
		var pr postingsResponse
		u := fmt.Sprintf("%s?limit=%d&offset=%d", base, pageSize, offset)
		if err := s.c.GetJSON(ctx, u, &pr); err != nil {
			return out, fmt.Errorf("smartrecruiters get: %w", err)
		}
		if len(pr.Content) == 0 {
			break
		}

		for _, p := range pr.Content {
			title := util.CleanText(p.Name)
			id := util.FirstNonEmpty(p.ID, p.UUID)
			if title == "" || id == "" {
				continue
			}
			loc := util.NormalizeLocation(strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", "))
			desc := []string{title, p.Department.Label, loc}
			if p.Location.Remote {
				desc = append(desc, "Remote")
			}
			if p.Location.Hybrid {
				desc = append(desc, "Hybrid")
			}

			out = append(out, domain.Posting{
				Title:        title,
				Company:      util.FirstNonEmpty(b.Name, domain.UnknownCompany),
				URL:          fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.JobsBase, "/"), slug, id),
				Description:  strings.Join(nonEmpty(desc...), " "),
				Boost:        b.Boost,
				LocationHint: loc,
			})
		}

		if pr.TotalFound > 0 && offset+pageSize >= pr.TotalFound {
			break
		}
	}
	return out, nil
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

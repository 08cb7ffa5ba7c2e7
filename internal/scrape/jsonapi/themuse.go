// Package jsonapi holds connectors for job boards that publish a JSON API.
package jsonapi

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

type museResponse struct {
	Page      int           `json:"page"`
	PageCount int           `json:"page_count"`
	Results   []musePosting `json:"results"`
}

type musePosting struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	Refs struct {
		LandingPage string `json:"landing_page"`
	} `json:"refs"`
	Locations []struct {
		Name string `json:"name"`
	} `json:"locations"`
}

// TheMuse pages through the public jobs API. params.pages caps the number of
// pages read (default 1).
type TheMuse struct {
	src config.Source
	c   *util.Client
}

func NewTheMuse(src config.Source, c *util.Client) *TheMuse {
	return &TheMuse{src: src, c: c}
}

func (m *TheMuse) Name() string { return m.src.Name }

func (m *TheMuse) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: m.src.Name}
	maxPages := m.src.ParamInt("pages", 1)

	for page := 0; page < maxPages; page++ {
		u, err := withQuery(m.src.URL, "page", strconv.Itoa(page))
		if err != nil {
			return res, err
		}

		var mr museResponse
		if err := m.c.GetJSON(ctx, u, &mr); err != nil {
			return res, fmt.Errorf("themuse page %d: %w", page, err)
		}
		for _, p := range mr.Results {
			if lead, ok := m.toPosting(p); ok {
				res.Leads = append(res.Leads, lead)
			}
		}
		if len(mr.Results) == 0 || page+1 >= mr.PageCount {
			break
		}
	}

	log.Printf("[jsonapi:themuse] source=%q leads=%d", m.src.Name, len(res.Leads))
	return res, nil
}

func (m *TheMuse) toPosting(p musePosting) (domain.Posting, bool) {
	title := util.CleanText(p.Name)
	link := strings.TrimSpace(p.Refs.LandingPage)
	if title == "" || link == "" {
		return domain.Posting{}, false
	}
	locs := make([]string, 0, len(p.Locations))
	for _, l := range p.Locations {
		if n := util.CleanText(l.Name); n != "" {
			locs = append(locs, n)
		}
	}
	return domain.Posting{
		Title:        title,
		Company:      util.FirstNonEmpty(util.CleanText(p.Company.Name), domain.UnknownCompany),
		URL:          link,
		Description:  util.StripHTML(p.Contents),
		Source:       m.src.Name,
		Boost:        m.src.Boost,
		LocationHint: strings.Join(locs, "; "),
	}, true
}

func withQuery(raw, key, val string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("bad url %q: %w", raw, err)
	}
	q := u.Query()
	q.Set(key, val)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package jsonapi

import (
	"context"
	"fmt"
	"log"
	"strings"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

type remotiveResponse struct {
	Jobs []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CompanyName string `json:"company_name"`
		URL         string `json:"url"`
		Location    string `json:"candidate_required_location"`
		Salary      string `json:"salary"`
	} `json:"jobs"`
}

type Remotive struct {
	src config.Source
	c   *util.Client
}

func NewRemotive(src config.Source, c *util.Client) *Remotive {
	return &Remotive{src: src, c: c}
}

func (r *Remotive) Name() string { return r.src.Name }

func (r *Remotive) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: r.src.Name}

	var rr remotiveResponse
	if err := r.c.GetJSON(ctx, r.src.URL, &rr); err != nil {
		return res, fmt.Errorf("remotive: %w", err)
	}
	for _, j := range rr.Jobs {
		title := util.CleanText(j.Title)
		link := strings.TrimSpace(j.URL)
		if title == "" || link == "" {
			continue
		}
		res.Leads = append(res.Leads, domain.Posting{
			Title:        title,
			Company:      util.FirstNonEmpty(util.CleanText(j.CompanyName), domain.UnknownCompany),
			URL:          link,
			Description:  util.StripHTML(j.Description),
			Salary:       util.CleanText(j.Salary),
			Source:       r.src.Name,
			Boost:        r.src.Boost,
			LocationHint: util.CleanText(j.Location),
		})
	}

	log.Printf("[jsonapi:remotive] source=%q leads=%d", r.src.Name, len(res.Leads))
	return res, nil
}

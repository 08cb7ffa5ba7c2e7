package lever

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/util"
)

const DefaultAPIBase = "https://api.lever.co"

type Scraper struct {
	c       *util.Client
	APIBase string
}

func New(c *util.Client) *Scraper {
	return &Scraper{c: c, APIBase: DefaultAPIBase}
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	WorkplaceType    string `json:"workplaceType"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
	AdditionalPlain  string `json:"additionalPlain"`
}

func (s *Scraper) PostingsURL(slug string) string {
	return fmt.Sprintf("%s/v0/postings/%s?mode=json", strings.TrimRight(s.APIBase, "/"), url.PathEscape(slug))
}

func (s *Scraper) FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error) {
	var postings []leverPosting
	if err := s.c.GetJSON(ctx, s.PostingsURL(b.Slug), &postings); err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}

	out := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		title := util.CleanText(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}
		desc := util.FirstNonEmpty(p.DescriptionPlain, util.StripHTML(p.Description))
		if p.AdditionalPlain != "" {
			desc += " " + p.AdditionalPlain
		}
		if p.WorkplaceType == "hybrid" {
			desc += " Hybrid"
		}

		out = append(out, domain.Posting{
			Title:        title,
			Company:      util.FirstNonEmpty(b.Name, domain.UnknownCompany),
			URL:          strings.TrimSpace(p.HostedURL),
			Description:  util.CleanText(desc),
			Boost:        b.Boost,
			LocationHint: util.NormalizeLocation(p.Categories.Location),
		})
	}
	return out, nil
}

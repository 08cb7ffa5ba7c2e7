// Package feed reads RSS and Atom job feeds.
package feed

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

type Fetcher struct {
	src    config.Source
	c      *util.Client
	parser *gofeed.Parser
}

func New(src config.Source, c *util.Client) *Fetcher {
	return &Fetcher{src: src, c: c, parser: gofeed.NewParser()}
}

func (f *Fetcher) Name() string { return f.src.Name }

func (f *Fetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: f.src.Name}

	resp, err := f.c.Get(ctx, f.src.URL, util.AcceptFeed)
	if err != nil {
		return res, fmt.Errorf("feed get: %w", err)
	}
	defer resp.Body.Close()

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return res, fmt.Errorf("feed parse: %w", err)
	}

	splitCompany := f.src.Param("company_in_title", "") == "true"
	for _, it := range parsed.Items {
		if p, ok := f.toPosting(it, splitCompany); ok {
			res.Leads = append(res.Leads, p)
		}
	}

	log.Printf("[feed] source=%q items=%d leads=%d", f.src.Name, len(parsed.Items), len(res.Leads))
	return res, nil
}

func (f *Fetcher) toPosting(it *gofeed.Item, splitCompany bool) (domain.Posting, bool) {
	title := util.CleanText(it.Title)
	link := strings.TrimSpace(it.Link)
	if title == "" || link == "" {
		return domain.Posting{}, false
	}

	company := ""
	if it.Author != nil {
		company = util.CleanText(it.Author.Name)
	}
	if company == "" && len(it.Authors) > 0 && it.Authors[0] != nil {
		company = util.CleanText(it.Authors[0].Name)
	}
	// WeWorkRemotely style "Company: Title"
	if splitCompany {
		if co, t, ok := strings.Cut(title, ":"); ok && strings.TrimSpace(t) != "" {
			if company == "" {
				company = strings.TrimSpace(co)
			}
			title = strings.TrimSpace(t)
		}
	}
	if company == "" {
		company = domain.UnknownCompany
	}

	desc := it.Description
	if desc == "" {
		desc = it.Content
	}

	return domain.Posting{
		Title:       title,
		Company:     company,
		URL:         link,
		Description: util.StripHTML(desc),
		Source:      f.src.Name,
		Boost:       f.src.Boost,
	}, true
}

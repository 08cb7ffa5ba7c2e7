// Package html scrapes listing pages that have no API by scanning anchors.
package html

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

const (
	defaultPathContains = "/job"
	defaultMinTitleLen  = 10
)

// Rule decides which anchors on a page are job links.
type Rule struct {
	PathContains string
	MinTitleLen  int
}

func RuleFromSource(src config.Source) Rule {
	return Rule{
		PathContains: strings.ToLower(src.Param("path_contains", defaultPathContains)),
		MinTitleLen:  src.ParamInt("min_title_len", defaultMinTitleLen),
	}
}

// Fetcher scores on the link text alone, so the title doubles as the
// description and company/salary carry the "see listing" sentinels.
type Fetcher struct {
	src  config.Source
	c    *util.Client
	rule Rule
}

func New(src config.Source, c *util.Client) *Fetcher {
	return &Fetcher{src: src, c: c, rule: RuleFromSource(src)}
}

func (f *Fetcher) Name() string { return f.src.Name }

func (f *Fetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: f.src.Name}

	doc, err := f.c.GetHTML(ctx, f.src.URL)
	if err != nil {
		return res, fmt.Errorf("html page: %w", err)
	}

	base := f.src.Param("base_url", f.src.URL)
	for _, l := range ExtractLinks(doc, base, f.rule) {
		res.Leads = append(res.Leads, domain.Posting{
			Title:       l.Title,
			Company:     domain.SeeListing,
			URL:         l.URL,
			Description: l.Title,
			Salary:      domain.SalaryCheckListing,
			Source:      f.src.Name,
			Boost:       f.src.Boost,
		})
	}

	log.Printf("[html] source=%q links=%d", f.src.Name, len(res.Leads))
	return res, nil
}

type Link struct {
	Title string
	URL   string
}

// ExtractLinks returns the anchors matching rule in document order, resolved
// against base and de-duplicated by URL.
func ExtractLinks(doc *goquery.Document, base string, rule Rule) []Link {
	seen := map[string]bool{}
	var out []Link
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if rule.PathContains != "" && !strings.Contains(strings.ToLower(href), rule.PathContains) {
			return
		}
		title := util.CleanText(a.Text())
		if utf8.RuneCountInString(title) <= rule.MinTitleLen || util.LooksLikeJunkTitle(title) {
			return
		}
		abs := util.Absolute(base, href)
		if abs == "" || util.IsTooGeneric(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, Link{Title: title, URL: abs})
	})
	return out
}

package ats

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/util"
)

// ClassName scrapes career pages whose postings share a container class.
// Board params: item (required), title, link, location.
type ClassName struct {
	c *util.Client
}

func NewClassName(c *util.Client) *ClassName { return &ClassName{c: c} }

func (s *ClassName) FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error) {
	itemSel := b.Param("item", "")
	if itemSel == "" {
		return nil, fmt.Errorf("classname board %q needs params.item", b.Name)
	}
	titleSel := b.Param("title", "")
	linkSel := b.Param("link", "a[href]")
	locSel := b.Param("location", "")

	doc, err := s.c.GetHTML(ctx, b.URL)
	if err != nil {
		return nil, fmt.Errorf("classname get: %w", err)
	}

	seen := map[string]bool{}
	var out []domain.Posting
	doc.Find(itemSel).Each(func(_ int, item *goquery.Selection) {
		link := item
		if !item.Is(linkSel) {
			link = item.Find(linkSel).First()
		}
		href, _ := link.Attr("href")
		abs := util.Absolute(b.URL, href)
		if abs == "" || seen[abs] {
			return
		}

		titleNode := link
		if titleSel != "" {
			titleNode = item.Find(titleSel).First()
		}
		title := util.CleanText(titleNode.Text())
		if title == "" {
			return
		}
		seen[abs] = true

		loc := ""
		if locSel != "" {
			loc = util.NormalizeLocation(item.Find(locSel).First().Text())
		}
		out = append(out, domain.Posting{
			Title:        title,
			Company:      util.FirstNonEmpty(b.Name, domain.UnknownCompany),
			URL:          abs,
			Description:  util.CleanText(item.Text()),
			Boost:        b.Boost,
			LocationHint: loc,
		})
	})
	return out, nil
}

package greenhouse

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/util"
)

const DefaultBoardBase = "https://boards.greenhouse.io"

// Scraper reads the public HTML board. Greenhouse boards link each opening as
// /<slug>/jobs/<id>, so any anchor with /jobs/<digits> is taken as a posting.
type Scraper struct {
	c         *util.Client
	BoardBase string
}

func New(c *util.Client) *Scraper {
	return &Scraper{c: c, BoardBase: DefaultBoardBase}
}

func (s *Scraper) BoardURL(b config.Board) string {
	if b.URL != "" {
		return b.URL
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.BoardBase, "/"), b.Slug)
}

func (s *Scraper) FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error) {
	boardURL := s.BoardURL(b)

	doc, err := s.c.GetHTML(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get board: %w", err)
	}

	seen := map[string]bool{}
	var jobs []domain.Posting
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := util.Absolute(boardURL, href)
		if abs == "" || !strings.Contains(strings.ToLower(abs), "/jobs/") {
			return
		}
		jobID := extractJobID(abs)
		if jobID == "" || seen[jobID] {
			return
		}
		seen[jobID] = true

		title := util.CleanText(a.Text())
		if util.LooksLikeJunkTitle(title) {
			// the detail page has the real title
			title = ""
		}
		jobs = append(jobs, domain.Posting{
			Title:   title,
			Company: util.FirstNonEmpty(b.Name, domain.UnknownCompany),
			URL:     abs,
			Boost:   b.Boost,
		})
	})

	if b.Param("hydrate", "true") == "true" {
		for i := range jobs {
			if err := s.hydrate(ctx, &jobs[i]); err != nil {
				log.Printf("[ats:greenhouse] hydrate url=%q err=%v", jobs[i].URL, err)
			}
		}
	}

	out := jobs[:0]
	for _, j := range jobs {
		if j.Title != "" {
			out = append(out, j)
		}
	}
	return out, nil
}

// hydrate fills title, location and description from the job page.
func (s *Scraper) hydrate(ctx context.Context, j *domain.Posting) error {
	doc, err := s.c.GetHTML(ctx, j.URL)
	if err != nil {
		return err
	}
	if j.Title == "" {
		j.Title = util.CleanText(doc.Find("h1").First().Text())
	}
	j.LocationHint = util.FindLocation(doc)
	j.Description = util.PageText(doc, "#content", ".job__description", "main")
	return nil
}

func extractJobID(u string) string {
	_, tail, ok := strings.Cut(u, "/jobs/")
	if !ok {
		return ""
	}
	end := 0
	for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
		end++
	}
	return tail[:end]
}

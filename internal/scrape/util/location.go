package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.HasPrefix(l, "view") || strings.HasPrefix(l, "apply") ||
		l == "see all jobs" || l == "learn more"
}

var locationSelectors = []string{
	".location",
	".job__location",
	".posting-categories .location",
	"[itemprop='jobLocation']",
	"[data-testid='job-location']",
	"[data-qa='location']",
}

// FindLocation looks for a location on a job detail page: known selectors
// first, then a "Location:" label in the og:description or body text.
func FindLocation(doc *goquery.Document) string {
	for _, sel := range locationSelectors {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := labeledLocation(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}
	return NormalizeLocation(labeledLocation(doc.Find("body").Text()))
}

func labeledLocation(s string) string {
	low := strings.ToLower(s)
	for _, lab := range []string{"job location:", "locations:", "location:"} {
		i := strings.Index(low, lab)
		if i < 0 || i+len(lab) > len(s) {
			continue
		}
		rest := strings.TrimSpace(s[i+len(lab):])
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		if rest = CleanText(rest); rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}

// PageText returns the readable text of the first matching container, used as
// a job description.
func PageText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		s.Find("script, style").Remove()
		if t := CleanText(s.Text()); t != "" {
			return t
		}
	}
	return ""
}

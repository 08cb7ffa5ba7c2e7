// Package email turns job-alert emails from an IMAP mailbox into postings.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap/v2"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/html"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

const defaultMaxMessages = 200

// AccountFromSource reads the connection params of an email source.
func AccountFromSource(src config.Source, password string) Account {
	return Account{
		Host:     src.Param("imap_host", ""),
		Port:     src.Param("imap_port", "993"),
		Username: src.Param("username", ""),
		Password: password,
		Mailbox:  src.Param("mailbox", "INBOX"),
		MaxAge:   time.Duration(src.ParamInt("max_age_days", 90)) * 24 * time.Hour,
	}
}

type Fetcher struct {
	src      config.Source
	dial     Dialer
	subjects []string
	rule     html.Rule
}

func New(src config.Source, dial Dialer) *Fetcher {
	return &Fetcher{
		src:      src,
		dial:     dial,
		subjects: src.ParamList("subjects"),
		rule:     html.RuleFromSource(src),
	}
}

func (f *Fetcher) Name() string { return f.src.Name }

// Fetch reads unseen alerts. Messages are marked \Seen only by Finalize, after
// the run has recorded what it found.
func (f *Fetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: f.src.Name}

	mb, err := f.dial(ctx)
	if err != nil {
		return res, err
	}
	defer mb.Close()

	msgs, err := mb.Unseen(ctx, f.src.ParamInt("max_messages", defaultMaxMessages))
	if err != nil {
		return res, err
	}

	var processed []imap.UID
	seen := map[string]bool{}
	for _, m := range msgs {
		subject, htmlBody, perr := parseMessage(m.Raw)
		if perr != nil {
			log.Printf("[email] uid=%d parse err=%v", m.UID, perr)
			continue
		}
		subject = util.FirstNonEmpty(subject, m.Subject)
		if len(f.subjects) > 0 && !containsAnyCI(subject, f.subjects) {
			continue
		}
		processed = append(processed, m.UID)

		for _, p := range f.postingsFromHTML(htmlBody) {
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			res.Leads = append(res.Leads, p)
		}
	}

	if len(processed) > 0 {
		res.Finalize = func(ctx context.Context) error {
			mb, err := f.dial(ctx)
			if err != nil {
				return err
			}
			defer mb.Close()
			return mb.MarkSeen(ctx, processed)
		}
	}

	log.Printf("[email] source=%q messages=%d matched=%d leads=%d", f.src.Name, len(msgs), len(processed), len(res.Leads))
	return res, nil
}

func (f *Fetcher) postingsFromHTML(body string) []domain.Posting {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	var out []domain.Posting
	for _, l := range html.ExtractLinks(doc, f.src.Param("base_url", ""), f.rule) {
		out = append(out, domain.Posting{
			Title:       l.Title,
			Company:     domain.SeeListing,
			URL:         l.URL,
			Description: l.Title,
			Salary:      domain.SalaryCheckListing,
			Source:      f.src.Name,
			Boost:       f.src.Boost,
		})
	}
	return out
}

// parseMessage returns the decoded subject and the first text/html part.
func parseMessage(raw []byte) (subject, htmlBody string, err error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	subject, _ = mr.Header.Subject()
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return subject, htmlBody, fmt.Errorf("next part: %w", err)
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		if ct != "text/html" || htmlBody != "" {
			continue
		}
		b, err := io.ReadAll(p.Body)
		if err != nil {
			return subject, htmlBody, fmt.Errorf("read html part: %w", err)
		}
		htmlBody = string(b)
	}
	return subject, htmlBody, nil
}

func containsAnyCI(s string, needles []string) bool {
	ls := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(ls, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

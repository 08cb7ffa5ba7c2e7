// Package aggregate runs the source connectors and merges their output into
// one scored, de-duplicated, sorted list.
package aggregate

import (
	"context"
	"log"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/rank"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

// Scorer is the keyword scorer plus the structured-location lookup.
type Scorer interface {
	rank.Scorer
	MatchLocation(hint string) (string, bool)
}

// SourceStatus summarizes one connector call.
type SourceStatus struct {
	Name    string
	Fetched int
	Kept    int
	Err     error
}

type Result struct {
	Postings []domain.Posting
	Sources  []SourceStatus

	// Finalizers from connectors, to run once the seen-set is saved.
	Finalizers []func(context.Context) error
}

type Aggregator struct {
	fetchers      []types.Fetcher
	scorer        Scorer
	minScore      int
	locationBonus int
	workers       int
	sourceTimeout time.Duration
}

func New(fetchers []types.Fetcher, scorer Scorer, cfg config.Config) *Aggregator {
	return &Aggregator{
		fetchers:      fetchers,
		scorer:        scorer,
		minScore:      cfg.Scoring.MinScore,
		locationBonus: cfg.Scoring.StructuredLocationBonus,
		workers:       max(cfg.Fetch.Workers, 1),
		sourceTimeout: time.Duration(cfg.Fetch.SourceTimeoutSeconds) * time.Second,
	}
}

type slot struct {
	res types.ScrapeResult
	err error
}

// Run calls every connector, at most workers at a time. Output order does not
// depend on which connector finishes first: each one owns a slot and slots are
// merged in configured order.
func (a *Aggregator) Run(ctx context.Context) Result {
	slots := make([]slot, len(a.fetchers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, f := range a.fetchers {
		g.Go(func() error {
			fctx := gctx
			if a.sourceTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, a.sourceTimeout)
				defer cancel()
			}
			log.Printf("[%s] Running...", f.Name())
			res, err := f.Fetch(fctx)
			slots[i] = slot{res: res, err: err}
			// best-effort: never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	var out Result
	seen := map[string]bool{}
	for i, s := range slots {
		st := SourceStatus{Name: a.fetchers[i].Name(), Fetched: len(s.res.Leads), Err: s.err}
		if s.err != nil {
			log.Printf("[aggregate] source=%q error (keeping %d partial leads): %v", st.Name, st.Fetched, s.err)
		}
		for _, lead := range s.res.Leads {
			p, ok := a.process(lead, st.Name)
			if !ok || seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			out.Postings = append(out.Postings, p)
			st.Kept++
		}
		if s.res.Finalize != nil {
			out.Finalizers = append(out.Finalizers, s.res.Finalize)
		}
		log.Printf("[aggregate] source=%q fetched=%d kept=%d", st.Name, st.Fetched, st.Kept)
		out.Sources = append(out.Sources, st)
	}

	SortByScore(out.Postings)
	return out
}

// process scores one raw lead and normalizes it. ok is false when the lead is
// disqualified, below the threshold or has no usable URL.
func (a *Aggregator) process(p domain.Posting, source string) (domain.Posting, bool) {
	p.Title = util.CleanText(p.Title)
	if p.Title == "" {
		return p, false
	}

	score, label := a.scorer.Score(p.Title, p.Description)
	if score < 0 {
		return p, false
	}
	score += p.Boost
	if loc, ok := a.scorer.MatchLocation(p.LocationHint); ok {
		score += a.locationBonus
		label = rank.PinLabel(loc)
	}
	if score < a.minScore {
		return p, false
	}

	p.URL = util.Canonicalize(p.URL)
	if u, err := url.Parse(p.URL); err != nil || !u.IsAbs() || u.Host == "" {
		return p, false
	}
	p.Score = score
	p.Location = label
	if p.Source == "" {
		p.Source = source
	}
	if p.Company == "" {
		p.Company = domain.UnknownCompany
	}
	if p.Salary == "" {
		p.Salary = rank.ExtractSalary(p.Description)
	}
	return p, true
}

// SortByScore orders postings by score, highest first, keeping the relative
// order of equal scores.
func SortByScore(ps []domain.Posting) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Score > ps[j].Score })
}

// Package pipeline runs one end-to-end pass: aggregate, filter already-seen
// postings, rerank, deliver the best few and remember everything new.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"jobsniper/internal/aggregate"
	"jobsniper/internal/dedup"
	"jobsniper/internal/domain"
	"jobsniper/internal/notify"
	"jobsniper/internal/rerank"
)

// persistTimeout bounds saving the seen-set and finalizing once delivery is
// over, including after the run's context was cancelled.
const persistTimeout = 30 * time.Second

type Aggregator interface {
	Run(ctx context.Context) aggregate.Result
}

type Pipeline struct {
	Aggregator Aggregator
	Seen       dedup.Store
	Notifier   notify.Notifier

	// Judge is optional; without it postings are ranked by keyword score.
	Judge rerank.Judge

	MinAIScore    int
	TopN          int
	FallbackLimit int
}

type Summary struct {
	RunID      string
	Aggregated int
	New        int
	Candidates int
	Sent       int
	Sources    []aggregate.SourceStatus
	Elapsed    time.Duration
}

// Run performs one pass. Only seen-set failures are returned as errors;
// source, judge and delivery failures are logged.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log.Printf("[run %s] start", sum.RunID)

	res := p.Aggregator.Run(ctx)
	sum.Aggregated = len(res.Postings)
	sum.Sources = res.Sources

	fresh, err := dedup.FilterNew(ctx, p.Seen, res.Postings)
	if err != nil {
		return sum, fmt.Errorf("load seen set: %w", err)
	}
	sum.New = len(fresh)
	log.Printf("[run %s] aggregated=%d new=%d", sum.RunID, sum.Aggregated, sum.New)

	if len(fresh) == 0 {
		if err := p.persist(ctx, sum.RunID, nil, res.Finalizers); err != nil {
			return sum, err
		}
		sum.Elapsed = time.Since(start)
		log.Printf("[run %s] nothing new (%s)", sum.RunID, sum.Elapsed.Round(time.Millisecond))
		return sum, nil
	}

	candidates := p.candidates(ctx, fresh)
	sum.Candidates = len(candidates)

	top := candidates[:min(len(candidates), max(p.TopN, 0))]
	for i, c := range top {
		log.Printf("[run %s] %d. [%d] %s @ %s", sum.RunID, i+1, c.DisplayScore(), c.Title, c.Company)
	}
	if len(top) > 0 {
		sum.Sent = notify.Deliver(ctx, p.Notifier, top)
	}

	// Everything new is remembered, delivered or not.
	if err := p.persist(ctx, sum.RunID, domain.URLs(fresh), res.Finalizers); err != nil {
		return sum, err
	}

	sum.Elapsed = time.Since(start)
	log.Printf("[run %s] done new=%d candidates=%d sent=%d (%s)",
		sum.RunID, sum.New, sum.Candidates, sum.Sent, sum.Elapsed.Round(time.Millisecond))
	return sum, nil
}

func (p *Pipeline) candidates(ctx context.Context, fresh []domain.Posting) []domain.Posting {
	if p.Judge != nil {
		return rerank.Rerank(ctx, p.Judge, fresh, p.MinAIScore)
	}
	log.Printf("[run] reranking disabled, using keyword scores")
	out := append([]domain.Posting(nil), fresh...)
	aggregate.SortByScore(out)
	if p.FallbackLimit > 0 && len(out) > p.FallbackLimit {
		out = out[:p.FallbackLimit]
	}
	return out
}

// persist saves urls and then runs the finalizers. It ignores cancellation of
// ctx so an interrupted run still records what it already delivered.
func (p *Pipeline) persist(ctx context.Context, runID string, urls []string, fns []func(context.Context) error) error {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := p.Seen.MarkSeen(sctx, urls); err != nil {
		return fmt.Errorf("save seen set: %w", err)
	}
	finalize(sctx, runID, fns)
	return nil
}

func finalize(ctx context.Context, runID string, fns []func(context.Context) error) {
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			log.Printf("[run %s] finalize: %v", runID, err)
		}
	}
}

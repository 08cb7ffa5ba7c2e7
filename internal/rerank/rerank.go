// Package rerank attaches a relevance verdict to each posting and keeps the
// ones worth a candidate's attention.
package rerank

import (
	"context"
	"log"
	"sort"
	"strings"

	"jobsniper/internal/domain"
)

// Recommendations.
const (
	Send  = "SEND"
	Maybe = "MAYBE"
	Skip  = "SKIP"
)

type Verdict struct {
	Score          int      `json:"score"`
	Recommendation string   `json:"recommendation"`
	Reasoning      string   `json:"reasoning"`
	Highlights     []string `json:"highlights"`
	Requirements   []string `json:"requirements"`
}

// Judge evaluates a single posting.
type Judge interface {
	Evaluate(ctx context.Context, p domain.Posting) (Verdict, error)
}

// Fallback is the verdict used when a judge fails on one posting.
func Fallback(err error) Verdict {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if r := []rune(msg); len(r) > 50 {
		msg = string(r[:50])
	}
	return Verdict{
		Score:          5,
		Recommendation: Maybe,
		Reasoning:      "AI evaluation failed: " + msg,
	}
}

// Normalize clamps the score to 1..10 and fills missing fields.
func (v Verdict) Normalize() Verdict {
	v.Score = min(max(v.Score, 1), 10)
	v.Recommendation = strings.ToUpper(strings.TrimSpace(v.Recommendation))
	if v.Recommendation == "" {
		v.Recommendation = Maybe
	}
	if strings.TrimSpace(v.Reasoning) == "" {
		v.Reasoning = "No reasoning provided"
	}
	return v
}

// Rerank evaluates every posting, keeps those scoring at least minScore and
// orders them by score, highest first. Ties keep input order. A failing
// evaluation never stops the batch.
func Rerank(ctx context.Context, j Judge, ps []domain.Posting, minScore int) []domain.Posting {
	if len(ps) == 0 {
		return nil
	}
	log.Printf("[rerank] evaluating %d postings (min_score=%d)", len(ps), minScore)

	kept := make([]domain.Posting, 0, len(ps))
	for i, p := range ps {
		v, err := j.Evaluate(ctx, p)
		if err != nil {
			log.Printf("[rerank] %d/%d %q @ %s: %v", i+1, len(ps), p.Title, p.Company, err)
			v = Fallback(err)
		}
		v = v.Normalize()

		p.AIScore = v.Score
		p.AIRecommendation = v.Recommendation
		p.AIReasoning = v.Reasoning
		p.AIHighlights = v.Highlights
		p.AIRequirements = v.Requirements

		if v.Score >= minScore {
			kept = append(kept, p)
		} else {
			log.Printf("[rerank] %d/%d %q rejected %d/10", i+1, len(ps), p.Title, v.Score)
		}
	}

	sort.SliceStable(kept, func(a, b int) bool { return kept[a].AIScore > kept[b].AIScore })
	log.Printf("[rerank] %d/%d passed", len(kept), len(ps))
	return kept
}

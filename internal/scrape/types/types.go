package types

import (
	"context"

	"jobsniper/internal/domain"
)

// ScrapeResult is what one connector gathered. Leads are unscored.
// Finalize, when set, runs after the seen-set has been persisted
// (the email connector marks its messages read there).
type ScrapeResult struct {
	Source   string
	Leads    []domain.Posting
	Finalize func(context.Context) error
}

// Fetcher is implemented by every source connector. Fetch returns whatever it
// managed to gather together with the error that stopped it, if any.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc struct {
	Label string
	Fn    func(ctx context.Context) (ScrapeResult, error)
}

func (f FetcherFunc) Name() string { return f.Label }
func (f FetcherFunc) Fetch(ctx context.Context) (ScrapeResult, error) {
	return f.Fn(ctx)
}

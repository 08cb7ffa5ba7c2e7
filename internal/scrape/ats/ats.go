// Package ats fans a source's company boards out to the per-platform scrapers.
package ats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
	"jobsniper/internal/scrape/greenhouse"
	"jobsniper/internal/scrape/lever"
	"jobsniper/internal/scrape/smartrecruiters"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
	"jobsniper/internal/scrape/workday"
)

const (
	defaultWorkers = 4
	boardTimeout   = 60 * time.Second
)

// BoardFetcher scrapes one company board of a given platform.
type BoardFetcher interface {
	FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error)
}

// Registry maps board types to their scraper.
type Registry map[string]BoardFetcher

func DefaultRegistry(c *util.Client) Registry {
	return Registry{
		config.BoardGreenhouse:      greenhouse.New(c),
		config.BoardClassName:       NewClassName(c),
		config.BoardLever:           lever.New(c),
		config.BoardSmartRecruiters: smartrecruiters.New(c),
		config.BoardWorkday:         workday.New(c),
	}
}

// FetchBoard runs the scraper registered for b.Type.
func (r Registry) FetchBoard(ctx context.Context, b config.Board) ([]domain.Posting, error) {
	bf, ok := r[b.Type]
	if !ok {
		return nil, fmt.Errorf("unknown board type %q", b.Type)
	}
	return bf.FetchBoard(ctx, b)
}

type Fetcher struct {
	src     config.Source
	reg     Registry
	workers int
}

func New(src config.Source, reg Registry) *Fetcher {
	return &Fetcher{
		src:     src,
		reg:     reg,
		workers: src.ParamInt("workers", defaultWorkers),
	}
}

func (f *Fetcher) Name() string { return f.src.Name }

type boardResult struct {
	jobs []domain.Posting
	err  error
}

// Fetch scrapes every board with a small worker pool. Results keep board order
// and one failing board does not stop the others.
func (f *Fetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	boards := f.src.Boards
	results := make([]boardResult, len(boards))
	workCh := make(chan int)

	workers := min(max(f.workers, 1), max(len(boards), 1))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range workCh {
				b := boards[idx]
				bctx, cancel := context.WithTimeout(ctx, boardTimeout)
				jobs, err := f.reg.FetchBoard(bctx, b)
				cancel()
				results[idx] = boardResult{jobs: jobs, err: err}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for i := range boards {
			select {
			case <-ctx.Done():
				return
			case workCh <- i:
			}
		}
	}()
	wg.Wait()

	res := types.ScrapeResult{Source: f.src.Name}
	var errs []error
	for i, r := range results {
		b := boards[i]
		if r.err != nil {
			if errors.Is(r.err, workday.ErrBlocked) {
				log.Printf("[ats:%s] company=%q host blocked by Cloudflare; skipped", b.Type, b.Name)
			} else {
				log.Printf("[ats:%s] company=%q slug=%q err=%v", b.Type, b.Name, b.Slug, r.err)
			}
			errs = append(errs, fmt.Errorf("%s (%s): %w", b.Name, b.Type, r.err))
		}
		for _, j := range r.jobs {
			j.Source = f.src.Name
			// board boost stacks on top of the source boost
			j.Boost += f.src.Boost
			res.Leads = append(res.Leads, j)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	log.Printf("[ats] source=%q boards=%d leads=%d failed=%d", f.src.Name, len(boards), len(res.Leads), len(errs))
	return res, errors.Join(errs...)
}

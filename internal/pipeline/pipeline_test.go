package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsniper/internal/aggregate"
	"jobsniper/internal/dedup"
	"jobsniper/internal/domain"
	"jobsniper/internal/rerank"
)

type fakeAggregator struct {
	postings   []domain.Posting
	finalizers []func(context.Context) error
}

func (f fakeAggregator) Run(context.Context) aggregate.Result {
	return aggregate.Result{
		Postings:   append([]domain.Posting(nil), f.postings...),
		Finalizers: f.finalizers,
	}
}

type recorder struct{ sent []domain.Posting }

func (r *recorder) Send(_ context.Context, p domain.Posting) error {
	r.sent = append(r.sent, p)
	return nil
}

type scoreByURL map[string]int

func (s scoreByURL) Evaluate(_ context.Context, p domain.Posting) (rerank.Verdict, error) {
	if v, ok := s[p.URL]; ok {
		return rerank.Verdict{Score: v, Recommendation: rerank.Send}, nil
	}
	return rerank.Verdict{}, errors.New("unavailable")
}

type brokenStore struct{ loadErr, saveErr error }

func (b brokenStore) LoadSeen(context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, b.loadErr
}
func (b brokenStore) MarkSeen(context.Context, []string) error { return b.saveErr }

func postings(n int) []domain.Posting {
	out := make([]domain.Posting, n)
	for i := range out {
		out[i] = domain.Posting{
			Title:   fmt.Sprintf("Publicist %d", i),
			Company: "Acme",
			URL:     fmt.Sprintf("https://jobs.example.com/%d", i),
			Score:   100 - i,
		}
	}
	return out
}

func newPipeline(t *testing.T, agg Aggregator) (*Pipeline, *recorder, *dedup.FileStore) {
	t.Helper()
	store := dedup.NewFileStore(filepath.Join(t.TempDir(), "seen_jobs.json"))
	rec := &recorder{}
	return &Pipeline{
		Aggregator:    agg,
		Seen:          store,
		Notifier:      rec,
		MinAIScore:    7,
		TopN:          5,
		FallbackLimit: 10,
	}, rec, store
}

func TestRunKeywordFallback(t *testing.T) {
	ctx := context.Background()
	p, rec, store := newPipeline(t, fakeAggregator{postings: postings(12)})

	sum, err := p.Run(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 12, sum.New)
	assert.Equal(t, 10, sum.Candidates)
	assert.Equal(t, 5, sum.Sent)
	require.Len(t, rec.sent, 5)
	assert.Equal(t, "https://jobs.example.com/0", rec.sent[0].URL)

	seen, err := store.LoadSeen(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 12, "every new posting is remembered, sent or not")

	// second run: nothing new, nothing sent
	rec.sent = nil
	sum, err = p.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.New)
	assert.Empty(t, rec.sent)
}

func TestRunWithJudge(t *testing.T) {
	ps := postings(4)
	p, rec, store := newPipeline(t, fakeAggregator{postings: ps})
	p.Judge = scoreByURL{ps[0].URL: 6, ps[1].URL: 8, ps[2].URL: 10}

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Candidates)
	require.Len(t, rec.sent, 2)
	assert.Equal(t, ps[2].URL, rec.sent[0].URL)
	assert.Equal(t, 10, rec.sent[0].AIScore)
	assert.Equal(t, ps[1].URL, rec.sent[1].URL)

	seen, _ := store.LoadSeen(context.Background())
	assert.Len(t, seen, 4)
}

func TestRunNothingNewStillPersists(t *testing.T) {
	ctx := context.Background()
	finalized := 0
	p, rec, store := newPipeline(t, fakeAggregator{finalizers: []func(context.Context) error{
		func(context.Context) error { finalized++; return nil },
	}})

	sum, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Sent)
	assert.Empty(t, rec.sent)
	assert.Equal(t, 1, finalized)
	assert.FileExists(t, store.Path())
}

func TestRunFinalizesAfterSave(t *testing.T) {
	ctx := context.Background()
	var seenAtFinalize int
	var p *Pipeline
	var store *dedup.FileStore
	agg := fakeAggregator{postings: postings(2), finalizers: []func(context.Context) error{
		func(ctx context.Context) error {
			s, err := store.LoadSeen(ctx)
			seenAtFinalize = len(s)
			return err
		},
		func(context.Context) error { return errors.New("imap gone") },
	}}
	p, _, store = newPipeline(t, agg)

	_, err := p.Run(ctx)
	require.NoError(t, err, "finalizer errors are logged, not returned")
	assert.Equal(t, 2, seenAtFinalize)
}

func TestRunSeenSetFailures(t *testing.T) {
	ctx := context.Background()

	p, rec, _ := newPipeline(t, fakeAggregator{postings: postings(1)})
	p.Seen = brokenStore{loadErr: errors.New("permission denied")}
	_, err := p.Run(ctx)
	assert.ErrorContains(t, err, "load seen set")
	assert.Empty(t, rec.sent)

	p.Seen = brokenStore{saveErr: errors.New("disk full")}
	_, err = p.Run(ctx)
	assert.ErrorContains(t, err, "save seen set")
}

type cancelAfterFirst struct {
	cancel context.CancelFunc
	sent   []domain.Posting
}

func (c *cancelAfterFirst) Send(_ context.Context, p domain.Posting) error {
	c.sent = append(c.sent, p)
	c.cancel()
	return nil
}

func TestRunInterruptedStillPersists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finalized := 0
	p, _, store := newPipeline(t, fakeAggregator{postings: postings(3), finalizers: []func(context.Context) error{
		func(ctx context.Context) error { finalized++; return ctx.Err() },
	}})
	n := &cancelAfterFirst{cancel: cancel}
	p.Notifier = n

	sum, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sent)
	require.Len(t, n.sent, 1)
	assert.Equal(t, 1, finalized)

	seen, err := store.LoadSeen(context.Background())
	require.NoError(t, err)
	assert.Contains(t, seen, n.sent[0].URL)
	assert.Len(t, seen, 3)
}

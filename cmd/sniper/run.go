package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobsniper/internal/aggregate"
	"jobsniper/internal/config"
	"jobsniper/internal/dedup"
	"jobsniper/internal/notify"
	"jobsniper/internal/pipeline"
	"jobsniper/internal/rank"
	"jobsniper/internal/rerank"
	"jobsniper/internal/scheduler"
	"jobsniper/internal/scrape"
	"jobsniper/internal/secrets"
)

type runOptions struct {
	dryRun bool
	every  time.Duration
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, score, filter and deliver new postings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPipeline(ctx, cfg, *opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print messages instead of sending them to Telegram")
	cmd.Flags().DurationVar(&opts.every, "every", 0, "Repeat the run on this interval (e.g. 1h) until interrupted")
	return cmd
}

func runPipeline(ctx context.Context, cfg config.Config, opts runOptions, out io.Writer) error {
	scorer, err := rank.NewKeywordScorer(cfg.Scoring)
	if err != nil {
		return err
	}

	deps := scrape.NewDeps(cfg, secrets.SourcePassword)
	fetchers, err := scrape.Build(cfg, deps)
	if err != nil {
		return err
	}

	seen, closeSeen, err := dedup.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open seen set: %w", err)
	}
	defer func() { _ = closeSeen() }()

	n, err := buildNotifier(cfg, opts.dryRun, out)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Aggregator:    aggregate.New(fetchers, scorer, cfg),
		Seen:          seen,
		Notifier:      n,
		MinAIScore:    cfg.Rerank.MinScore,
		TopN:          cfg.Notify.TopN,
		FallbackLimit: cfg.Notify.FallbackLimit,
	}

	judge, err := buildJudge(ctx, cfg)
	if err != nil {
		return err
	}
	if judge != nil {
		defer judge.Close()
		p.Judge = judge
	}

	if opts.every <= 0 {
		_, err := p.Run(ctx)
		return err
	}

	log.Printf("[run] repeating every %s", opts.every)
	return scheduler.Every(ctx, opts.every, "run", func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	})
}

func buildNotifier(cfg config.Config, dryRun bool, out io.Writer) (notify.Notifier, error) {
	if dryRun {
		return notify.ConsoleNotifier{W: out}, nil
	}

	token := secrets.Lookup(secrets.TelegramToken)
	chatID := cfg.Notify.Telegram.ChatID
	if chatID == "" {
		chatID = secrets.Lookup(secrets.TelegramChatID)
	}
	if token == "" || chatID == "" {
		log.Printf("[run] telegram credentials not found, printing messages instead")
		return notify.ConsoleNotifier{W: out}, nil
	}

	tn, err := notify.NewTelegram(token, chatID, cfg.Notify.Telegram)
	if err != nil {
		return nil, err
	}
	return tn, nil
}

// buildJudge returns nil when reranking is off or no API key is set.
func buildJudge(ctx context.Context, cfg config.Config) (*rerank.GeminiJudge, error) {
	if !cfg.Rerank.Enabled {
		return nil, nil
	}

	profile, err := rerank.LoadProfile(cfg.ResolvePath(cfg.Rerank.ProfilePath))
	if err != nil {
		return nil, err
	}

	j, err := rerank.NewGeminiJudge(ctx, secrets.Lookup(secrets.GeminiAPIKey), cfg.Rerank, profile)
	if errors.Is(err, rerank.ErrNoAPIKey) {
		log.Printf("[run] %s not set, falling back to keyword scores", secrets.GeminiAPIKey)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[run] reranking with %s (min_score=%d)", cfg.Rerank.Model, cfg.Rerank.MinScore)
	return j, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobsniper/internal/rank"
)

func newScoreCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <title> [description]",
		Short: "Show how the keyword scorer rates a posting",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			scorer, err := rank.NewKeywordScorer(cfg.Scoring)
			if err != nil {
				return err
			}

			desc := ""
			if len(args) > 1 {
				desc = args[1]
			}
			score, label := scorer.Score(args[0], desc)

			out := cmd.OutOrStdout()
			if score == rank.Disqualified {
				fmt.Fprintf(out, "DISQUALIFIED  %q\n", args[0])
				return nil
			}
			verdict := "below threshold"
			if score >= cfg.Scoring.MinScore {
				verdict = "kept"
			}
			fmt.Fprintf(out, "score: %d (min %d, %s)\n", score, cfg.Scoring.MinScore, verdict)
			fmt.Fprintf(out, "location: %s\n", label)
			fmt.Fprintf(out, "salary: %s\n", rank.ExtractSalary(desc))
			return nil
		},
	}
}

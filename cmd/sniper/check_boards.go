package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobsniper/internal/config"
	"jobsniper/internal/scrape"
)

const boardCheckTimeout = 30 * time.Second

func newCheckBoardsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-boards",
		Short: "Probe every configured ATS board and report which ones respond",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			deps := scrape.NewDeps(cfg, nil)

			out := cmd.OutOrStdout()
			checked, failed := 0, 0
			for _, src := range cfg.Sources {
				if src.Kind != config.KindATS {
					continue
				}
				for _, b := range src.Boards {
					checked++
					ctx, cancel := context.WithTimeout(cmd.Context(), boardCheckTimeout)
					ps, err := deps.Boards.FetchBoard(ctx, b)
					cancel()
					if err != nil {
						failed++
						fmt.Fprintf(out, "FAILED  %-12s %s: %v\n", b.Type, b.Name, err)
						continue
					}
					fmt.Fprintf(out, "VALID   %-12s %s (%d postings)\n", b.Type, b.Name, len(ps))
				}
			}

			if checked == 0 {
				fmt.Fprintln(out, "no ATS boards configured")
				return nil
			}
			fmt.Fprintf(out, "%d/%d boards valid\n", checked-failed, checked)
			return nil
		},
	}
}

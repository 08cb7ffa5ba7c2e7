package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jobsniper/internal/config"
)

type rootOptions struct {
	dataDir    string
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "sniper",
		Short:         "Job posting aggregator",
		Long:          "sniper pulls postings from feeds, job APIs, career pages, ATS boards and alert emails, scores them against a keyword profile and delivers the best new ones.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for config and state (default $SNIPER_DATA_DIR or .)")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config.yml (default <data-dir>/config.yml, created on first run)")

	cmd.AddCommand(
		newRunCmd(opts),
		newScoreCmd(opts),
		newCheckBoardsCmd(opts),
		newChatIDCmd(),
		newSecretsCmd(),
	)
	return cmd
}

// loadConfig resolves, loads, overlays and validates the configuration.
func (o *rootOptions) loadConfig() (config.Config, error) {
	dataDir := o.dataDir
	if dataDir == "" {
		dataDir = os.Getenv("SNIPER_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}

	path := o.configPath
	if path == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, fmt.Errorf("config bootstrap: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load (%s): %w", path, err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if err := config.OverlayBoards(&cfg, filepath.Join(cfg.DataDir, "boards.yml")); err != nil {
		return config.Config{}, fmt.Errorf("boards overlay: %w", err)
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		return config.Config{}, fmt.Errorf("invalid config %s:\n- %s", path, strings.Join(v.Errors, "\n- "))
	}
	return cfg, nil
}

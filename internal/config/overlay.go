// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type BoardsFile struct {
	Boards []Board `yaml:"boards"`
}

// OverlayBoards replaces the board list of the first ats source with the one in
// boardsPath. Without an ats source a new "Company Boards" source is appended.
func OverlayBoards(cfg *Config, boardsPath string) error {
	b, err := os.ReadFile(boardsPath)
	if err != nil {
		// Missing boards file should not kill startup
		return nil
	}

	var bf BoardsFile
	if err := yaml.Unmarshal(b, &bf); err != nil {
		return err
	}
	if len(bf.Boards) == 0 {
		return nil
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].Kind == KindATS {
			cfg.Sources[i].Boards = bf.Boards
			return nil
		}
	}
	cfg.Sources = append(cfg.Sources, Source{
		Name:   "Company Boards",
		Kind:   KindATS,
		Boards: bf.Boards,
	})
	return nil
}

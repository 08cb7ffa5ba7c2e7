package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
)

//go:embed default.yml
var defaultConfig []byte

// Default returns the bundled configuration file contents.
func Default() []byte {
	return append([]byte(nil), defaultConfig...)
}

// EnsureUserConfig returns the path of config.yml inside dataDir, writing the
// bundled default there first if it does not exist yet.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, defaultConfig, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}

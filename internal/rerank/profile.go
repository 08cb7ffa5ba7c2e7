package rerank

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

//go:embed default_profile.md
var defaultProfile string

// DefaultProfile is the built-in candidate profile.
func DefaultProfile() string { return defaultProfile }

// LoadProfile reads the candidate profile at path. An empty path or a missing
// file yields the built-in profile.
func LoadProfile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return defaultProfile, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[rerank] profile %s not found, using built-in profile", path)
		return defaultProfile, nil
	}
	if err != nil {
		return "", fmt.Errorf("read profile: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return defaultProfile, nil
	}
	return string(b), nil
}

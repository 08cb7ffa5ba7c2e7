// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source kinds. Each kind maps to exactly one connector implementation.
const (
	KindRSS      = "rss"
	KindTheMuse  = "themuse"
	KindRemotive = "remotive"
	KindHTML     = "html"
	KindATS      = "ats"
	KindEmail    = "email"
)

// ATS board types dispatched by the ats connector.
const (
	BoardGreenhouse      = "greenhouse"
	BoardClassName       = "classname"
	BoardLever           = "lever"
	BoardSmartRecruiters = "smartrecruiters"
	BoardWorkday         = "workday"
)

// Marketing trap policies.
const (
	PolicyDiscard  = "discard"
	PolicyPenalize = "penalize"
	PolicyBoost    = "boost"
)

// Dedup backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Board struct {
	Name   string            `yaml:"name" validate:"required"`
	Type   string            `yaml:"type" validate:"required,oneof=greenhouse classname lever smartrecruiters workday"`
	Slug   string            `yaml:"slug"`
	URL    string            `yaml:"url" validate:"omitempty,url"`
	Boost  int               `yaml:"boost"`
	Params map[string]string `yaml:"params"`
}

type Source struct {
	Name     string            `yaml:"name" validate:"required"`
	Kind     string            `yaml:"kind" validate:"required,oneof=rss themuse remotive html ats email"`
	URL      string            `yaml:"url" validate:"omitempty,url"`
	Disabled bool              `yaml:"disabled"`
	Boost    int               `yaml:"boost"`
	Params   map[string]string `yaml:"params"`
	Boards   []Board           `yaml:"boards" validate:"dive"`
}

type MarketingTrap struct {
	Policy string `yaml:"policy" validate:"omitempty,oneof=discard penalize boost"`
	Amount int    `yaml:"amount" validate:"gte=0"`
}

type StrictGate struct {
	Enabled  bool `yaml:"enabled"`
	MinScore int  `yaml:"min_score" validate:"gte=0"`
}

type Scoring struct {
	MinScore                int           `yaml:"min_score" validate:"gte=0"`
	Tier1                   []string      `yaml:"tier1"`
	Tier2                   []string      `yaml:"tier2"`
	Negative                []string      `yaml:"negative"`
	Locations               []string      `yaml:"locations"`
	MarketingTrap           MarketingTrap `yaml:"marketing_trap"`
	StrictGate              StrictGate    `yaml:"strict_gate"`
	StructuredLocationBonus int           `yaml:"structured_location_bonus" validate:"gte=0"`
}

type Fetch struct {
	TimeoutSeconds       int     `yaml:"timeout_seconds" validate:"gte=0"`
	SourceTimeoutSeconds int     `yaml:"source_timeout_seconds" validate:"gte=0"`
	MinDelayMS           int     `yaml:"min_delay_ms" validate:"gte=0"`
	MaxDelayMS           int     `yaml:"max_delay_ms" validate:"gte=0"`
	HostRPS              float64 `yaml:"host_rps" validate:"gte=0"`
	HostBurst            int     `yaml:"host_burst" validate:"gte=0"`
	Workers              int     `yaml:"workers" validate:"gte=0"`
}

type Dedup struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=file sqlite"`
	Path    string `yaml:"path"`
}

type Rerank struct {
	Enabled     bool   `yaml:"enabled"`
	Model       string `yaml:"model"`
	MinScore    int    `yaml:"min_score" validate:"gte=0,lte=10"`
	ProfilePath string `yaml:"profile_path"`
	DelayMS     int    `yaml:"delay_ms" validate:"gte=0"`
}

type Telegram struct {
	ChatID            string  `yaml:"chat_id"`
	MessagesPerSecond float64 `yaml:"messages_per_second" validate:"gte=0"`
}

type Notify struct {
	TopN          int      `yaml:"top_n" validate:"gte=0"`
	FallbackLimit int      `yaml:"fallback_limit" validate:"gte=0"`
	Telegram      Telegram `yaml:"telegram"`
}

type Config struct {
	DataDir string   `yaml:"data_dir"`
	Scoring Scoring  `yaml:"scoring"`
	Sources []Source `yaml:"sources" validate:"dive"`
	Fetch   Fetch    `yaml:"fetch"`
	Dedup   Dedup    `yaml:"dedup"`
	Rerank  Rerank   `yaml:"rerank"`
	Notify  Notify   `yaml:"notify"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(path)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values that have a sensible non-zero default.
func (c *Config) ApplyDefaults() {
	if c.Scoring.MarketingTrap.Policy == "" {
		c.Scoring.MarketingTrap.Policy = PolicyDiscard
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = 20
	}
	if c.Fetch.SourceTimeoutSeconds == 0 {
		c.Fetch.SourceTimeoutSeconds = 300
	}
	if c.Fetch.MaxDelayMS < c.Fetch.MinDelayMS {
		c.Fetch.MaxDelayMS = c.Fetch.MinDelayMS
	}
	if c.Fetch.HostRPS == 0 {
		c.Fetch.HostRPS = 1
	}
	if c.Fetch.HostBurst == 0 {
		c.Fetch.HostBurst = 2
	}
	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = 1
	}
	if c.Dedup.Backend == "" {
		c.Dedup.Backend = BackendFile
	}
	if c.Dedup.Path == "" {
		if c.Dedup.Backend == BackendSQLite {
			c.Dedup.Path = "seen_jobs.db"
		} else {
			c.Dedup.Path = "seen_jobs.json"
		}
	}
	if c.Rerank.Model == "" {
		c.Rerank.Model = "gemini-1.5-flash"
	}
	if c.Rerank.MinScore == 0 {
		c.Rerank.MinScore = 7
	}
	if c.Notify.TopN == 0 {
		c.Notify.TopN = 5
	}
	if c.Notify.FallbackLimit == 0 {
		c.Notify.FallbackLimit = 10
	}
	if c.Notify.Telegram.MessagesPerSecond == 0 {
		c.Notify.Telegram.MessagesPerSecond = 1
	}
}

// ResolvePath makes p absolute relative to the data dir.
func (c Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// EnabledSources returns sources in configured order, skipping disabled ones.
func (c Config) EnabledSources() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

func (s Source) Param(key, def string) string {
	if v := strings.TrimSpace(s.Params[key]); v != "" {
		return v
	}
	return def
}

func (s Source) ParamInt(key string, def int) int {
	v := s.Param(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ParamList splits a comma separated parameter.
func (s Source) ParamList(key string) []string {
	var out []string
	for _, p := range strings.Split(s.Param(key, ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (b Board) Param(key, def string) string {
	if v := strings.TrimSpace(b.Params[key]); v != "" {
		return v
	}
	return def
}

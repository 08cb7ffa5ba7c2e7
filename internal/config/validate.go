package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrNoSources = errors.New("no sources enabled")

var validate = validator.New()

func Validate(cfg Config) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if len(cfg.Scoring.Tier1) == 0 && len(cfg.Scoring.Tier2) == 0 {
		errs = append(errs, "scoring needs at least one tier1 or tier2 keyword")
	}

	checkTerms := func(name string, terms []string) {
		for i, t := range terms {
			if strings.TrimSpace(t) == "" {
				errs = append(errs, fmt.Sprintf("%s[%d] cannot be empty", name, i))
			}
		}
	}
	checkTerms("scoring.tier1", cfg.Scoring.Tier1)
	checkTerms("scoring.tier2", cfg.Scoring.Tier2)
	checkTerms("scoring.negative", cfg.Scoring.Negative)
	checkTerms("scoring.locations", cfg.Scoring.Locations)

	for i, s := range cfg.Sources {
		switch s.Kind {
		case KindATS:
			if len(s.Boards) == 0 && !s.Disabled {
				errs = append(errs, fmt.Sprintf("sources[%d] (%s): ats source needs boards", i, s.Name))
			}
			for j, b := range s.Boards {
				if b.Slug == "" && b.URL == "" {
					errs = append(errs, fmt.Sprintf("sources[%d].boards[%d] (%s): slug or url is required", i, j, b.Name))
				}
				if (b.Type == BoardWorkday || b.Type == BoardClassName) && b.URL == "" {
					errs = append(errs, fmt.Sprintf("sources[%d].boards[%d] (%s): %s boards need a full url", i, j, b.Name, b.Type))
				}
			}
		case KindEmail:
			if s.Param("imap_host", "") == "" || s.Param("username", "") == "" {
				errs = append(errs, fmt.Sprintf("sources[%d] (%s): email source needs params.imap_host and params.username", i, s.Name))
			}
		default:
			if s.URL == "" {
				errs = append(errs, fmt.Sprintf("sources[%d] (%s): url is required for kind %q", i, s.Name, s.Kind))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	if len(cfg.EnabledSources()) == 0 {
		return ErrNoSources
	}
	return nil
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a copy with trimmed, de-duplicated keyword lists
// plus the errors and warnings found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scoring.Tier1 = trimList(out.Scoring.Tier1)
	out.Scoring.Tier2 = trimList(out.Scoring.Tier2)
	out.Scoring.Negative = trimList(out.Scoring.Negative)
	out.Scoring.Locations = trimList(out.Scoring.Locations)

	if err := Validate(out); err != nil {
		res.addErr("%v", err)
	}

	// a keyword that is both wanted and disqualifying can never score
	negSet := map[string]bool{}
	for _, n := range out.Scoring.Negative {
		negSet[strings.ToLower(n)] = true
	}
	for _, kw := range append(append([]string{}, out.Scoring.Tier1...), out.Scoring.Tier2...) {
		if negSet[strings.ToLower(kw)] {
			res.addWarn("keyword appears in both a tier and negative: %q", kw)
		}
	}

	if out.Scoring.StrictGate.Enabled && out.Scoring.StrictGate.MinScore == 0 {
		res.addWarn("strict_gate is enabled with min_score 0; it will never discard anything.")
	}
	if p := out.Scoring.MarketingTrap.Policy; p != "" && p != PolicyDiscard && out.Scoring.MarketingTrap.Amount == 0 {
		res.addWarn("marketing_trap.policy is %q with amount 0; it has no effect.", p)
	}
	if out.Fetch.MinDelayMS > 10000 {
		res.addWarn("fetch.min_delay_ms is very high (%d); runs will be slow.", out.Fetch.MinDelayMS)
	}
	if out.Notify.TopN > out.Notify.FallbackLimit && !out.Rerank.Enabled {
		res.addWarn("notify.top_n (%d) exceeds notify.fallback_limit (%d) while reranking is off.", out.Notify.TopN, out.Notify.FallbackLimit)
	}

	return out, res
}

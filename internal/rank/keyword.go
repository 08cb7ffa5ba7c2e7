package rank

import (
	"fmt"
	"regexp"
	"strings"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
)

// Points awarded by KeywordScorer.
const (
	Tier1Points     = 50
	TitleBonus      = 30
	Tier2Points     = 15
	LocationPoints  = 40
	HybridPoints    = 20
	marketingNeedle = "marketing"
	hybridNeedle    = "hybrid"
)

// KeywordScorer implements the tiered keyword rules. It is built once from a
// Scoring value and never reads configuration afterwards.
type KeywordScorer struct {
	tier1     []string
	tier2     []string
	locations []string
	negatives []*regexp.Regexp

	policy    MarketingPolicy
	strict    bool
	strictMin int
}

func NewKeywordScorer(sc config.Scoring) (*KeywordScorer, error) {
	policy, err := PolicyFromConfig(sc.MarketingTrap)
	if err != nil {
		return nil, err
	}
	s := &KeywordScorer{
		tier1:     lowerAll(sc.Tier1),
		tier2:     lowerAll(sc.Tier2),
		locations: append([]string(nil), sc.Locations...),
		policy:    policy,
		strict:    sc.StrictGate.Enabled,
		strictMin: sc.StrictGate.MinScore,
	}
	for _, n := range sc.Negative {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		re, err := regexp.Compile(negativePattern(n))
		if err != nil {
			return nil, fmt.Errorf("negative keyword %q: %w", n, err)
		}
		s.negatives = append(s.negatives, re)
	}
	return s, nil
}

// negativePattern matches kw case-insensitively as a whole word. A boundary is
// only required on a side where kw starts or ends with a word character, so
// keywords like "C++" or ".NET" still match.
func negativePattern(kw string) string {
	p := regexp.QuoteMeta(kw)
	if isWordByte(kw[0]) {
		p = `\b` + p
	}
	if isWordByte(kw[len(kw)-1]) {
		p += `\b`
	}
	return `(?i)` + p
}

// isWordByte reports whether c is in \w as RE2 defines it for \b.
func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// WithPolicy returns a copy of s using p for marketing titles.
func (s *KeywordScorer) WithPolicy(p MarketingPolicy) *KeywordScorer {
	cp := *s
	cp.policy = p
	return &cp
}

func (s *KeywordScorer) Policy() MarketingPolicy { return s.policy }

func (s *KeywordScorer) Score(title, description string) (int, string) {
	titleLower := strings.ToLower(title)
	text := titleLower + " " + strings.ToLower(description)

	// negatives only look at the title
	for _, re := range s.negatives {
		if re.MatchString(title) {
			return Disqualified, domain.LocationNA
		}
	}

	score := 0
	tier1Match := false
	titleHasTier := false

	for _, kw := range s.tier1 {
		if strings.Contains(text, kw) {
			score += Tier1Points
			tier1Match = true
			if strings.Contains(titleLower, kw) {
				score += TitleBonus
				titleHasTier = true
			}
		}
	}
	for _, kw := range s.tier2 {
		if strings.Contains(text, kw) {
			score += Tier2Points
			if strings.Contains(titleLower, kw) {
				titleHasTier = true
			}
		}
	}

	if strings.Contains(titleLower, marketingNeedle) && !titleHasTier {
		out := s.policy.Classify(title)
		if out.Discard {
			return Disqualified, domain.LocationNA
		}
		score += out.Delta
		if out.PseudoMatch {
			tier1Match = true
		}
	}

	if s.strict && !tier1Match && score < s.strictMin {
		return Disqualified, domain.LocationNA
	}

	label := domain.LocationRemote
	matched := false
	for _, loc := range s.locations {
		if strings.Contains(text, strings.ToLower(loc)) {
			score += LocationPoints
			label = LikelyHybridLabel(loc)
			matched = true
			break
		}
	}

	if matched && strings.Contains(text, hybridNeedle) {
		score += HybridPoints
		label += " - Hybrid"
	}

	return score, label
}

// MatchLocation returns the first preferred location contained in hint.
func (s *KeywordScorer) MatchLocation(hint string) (string, bool) {
	h := strings.ToLower(hint)
	if h == "" {
		return "", false
	}
	for _, loc := range s.locations {
		if strings.Contains(h, strings.ToLower(loc)) {
			return loc, true
		}
	}
	return "", false
}

func LikelyHybridLabel(loc string) string { return "📍 " + loc + " (Likely Hybrid)" }

func PinLabel(loc string) string { return "📍 " + loc }

func lowerAll(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.ToLower(strings.TrimSpace(x))
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}

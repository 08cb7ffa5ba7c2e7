package domain

// Placeholder values used when a source cannot provide a field.
const (
	UnknownCompany     = "Unknown"
	SeeListing         = "See Listing"
	SalaryNotListed    = "Not listed"
	SalaryCheckListing = "Check Listing"
	LocationRemote     = "Remote"
	LocationNA         = "N/A"
)

// Posting is the canonical job record that flows from connectors to the notifier.
// URL is the identity key.
type Posting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Score       int    `json:"score"`
	Source      string `json:"source"`

	AIScore          int      `json:"ai_score,omitempty"`
	AIRecommendation string   `json:"ai_recommendation,omitempty"`
	AIReasoning      string   `json:"ai_reasoning,omitempty"`
	AIHighlights     []string `json:"ai_highlights,omitempty"`
	AIRequirements   []string `json:"ai_requirements,omitempty"`

	// LocationHint is the structured location reported by an API, if any.
	LocationHint string `json:"-"`

	// Boost is a flat bonus applied by the connector that produced the posting.
	Boost int `json:"-"`
}

// Reranked reports whether a relevance verdict has been attached.
func (p Posting) Reranked() bool { return p.AIRecommendation != "" }

// DisplayScore is the AI score when present, the keyword score otherwise.
func (p Posting) DisplayScore() int {
	if p.Reranked() {
		return p.AIScore
	}
	return p.Score
}

// URLs returns the identity keys of ps in order.
func URLs(ps []Posting) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.URL)
	}
	return out
}

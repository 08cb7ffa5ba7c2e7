package rank

// Scorer assigns a keyword score and a location label to a posting's text.
// A negative score means the posting is disqualified.
type Scorer interface {
	Score(title, description string) (score int, label string)
}

// Disqualified is the score returned for postings that must never be kept.
const Disqualified = -1

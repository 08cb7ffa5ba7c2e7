package rank

import (
	"fmt"

	"jobsniper/internal/config"
)

// Outcome of a marketing policy decision.
type Outcome struct {
	Discard     bool
	Delta       int
	PseudoMatch bool
}

// MarketingPolicy decides what happens to a title that mentions marketing
// without any tier keyword in it.
type MarketingPolicy interface {
	Name() string
	Classify(title string) Outcome
}

type DiscardPolicy struct{}

func (DiscardPolicy) Name() string { return config.PolicyDiscard }
func (DiscardPolicy) Classify(string) Outcome { return Outcome{Discard: true} }

type PenalizePolicy struct{ Amount int }

func (p PenalizePolicy) Name() string { return config.PolicyPenalize }
func (p PenalizePolicy) Classify(string) Outcome { return Outcome{Delta: -p.Amount} }

// BoostPolicy adds a bonus and counts the title as a keyword match, which lets
// it pass the strict gate.
type BoostPolicy struct{ Amount int }

func (p BoostPolicy) Name() string { return config.PolicyBoost }
func (p BoostPolicy) Classify(string) Outcome {
	return Outcome{Delta: p.Amount, PseudoMatch: true}
}

// PolicyFromConfig builds the configured policy.
func PolicyFromConfig(mt config.MarketingTrap) (MarketingPolicy, error) {
	switch mt.Policy {
	case "", config.PolicyDiscard:
		return DiscardPolicy{}, nil
	case config.PolicyPenalize:
		return PenalizePolicy{Amount: mt.Amount}, nil
	case config.PolicyBoost:
		return BoostPolicy{Amount: mt.Amount}, nil
	default:
		return nil, fmt.Errorf("unknown marketing_trap policy %q", mt.Policy)
	}
}

package quota

import (
	"fmt"
	"strings"
)

// DefaultLimits is the free plan: 5 flashcard sets, 10 tutor answers and no
// quizzes per day.
func DefaultLimits() Limits {
	return Limits{
		FreeFlashcards: 5,
		FreeQuizzes:    0,
		FreeTutorQnA:   10,
	}
}

func NewPolicy(limits Limits) *Policy {
	return &Policy{
		table: map[Tier]map[Capability]int64{
			TierFree: {
				CapabilityFlashcards: limits.FreeFlashcards,
				CapabilityQuizzes:    limits.FreeQuizzes,
				CapabilityTutorQnA:   limits.FreeTutorQnA,
			},
			TierPaid: {
				CapabilityFlashcards: Unlimited,
				CapabilityQuizzes:    Unlimited,
				CapabilityTutorQnA:   Unlimited,
			},
		},
	}
}

// ParseTier is case-insensitive; anything unrecognised is treated as free.
func ParseTier(raw string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierPaid:
		return TierPaid
	default:
		return TierFree
	}
}

func ParseCapability(raw string) (Capability, error) {
	c := Capability(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCapability, raw)
	}

	return c, nil
}

func (c Capability) Valid() bool {
	switch c {
	case CapabilityFlashcards, CapabilityQuizzes, CapabilityTutorQnA:
		return true
	}

	return false
}

// Limit returns the daily limit for tier and capability, Unlimited when uncapped.
func (p *Policy) Limit(tier Tier, capability Capability) (int64, error) {
	if !capability.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCapability, capability)
	}

	limits, ok := p.table[tier]
	if !ok {
		limits = p.table[TierFree]
	}

	return limits[capability], nil
}

// Evaluate decides whether one more use is allowed given today's count.
// It has no side effects.
func (p *Policy) Evaluate(tier Tier, capability Capability, current int64) (Decision, error) {
	limit, err := p.Limit(tier, capability)
	if err != nil {
		return Decision{}, err
	}

	if current < 0 {
		current = 0
	}

	return Decide(capability, limit, current), nil
}

// Decide builds a decision from a resolved limit.
func Decide(capability Capability, limit, current int64) Decision {
	if limit == Unlimited {
		return Decision{
			Capability: capability,
			Allowed:    true,
			Limit:      Unlimited,
			Current:    current,
			Remaining:  Unlimited,
		}
	}

	return Decision{
		Capability: capability,
		Allowed:    current < limit,
		Limit:      limit,
		Current:    current,
		Remaining:  max(limit-current, 0),
	}
}

package ledger

import (
	"fmt"
	"time"

	"codeberg.org/studyhall/server/internal/quota"
)

func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(DayLayout))
}

func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", raw, err)
	}

	return DayOf(t), nil
}

// Time returns midnight UTC of the day, zero time if the day is malformed.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}

	return t
}

func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d Day) String() string {
	return string(d)
}

// Count returns the counter for a capability.
func (r UsageRecord) Count(capability quota.Capability) int64 {
	switch capability {
	case quota.CapabilityFlashcards:
		return r.FlashcardCount
	case quota.CapabilityQuizzes:
		return r.QuizCount
	case quota.CapabilityTutorQnA:
		return r.QnACount
	}

	return 0
}

// column/field name of a capability counter, shared by every backend
func counterField(capability quota.Capability) (string, error) {
	switch capability {
	case quota.CapabilityFlashcards:
		return "flashcard_count", nil
	case quota.CapabilityQuizzes:
		return "quiz_count", nil
	case quota.CapabilityTutorQnA:
		return "qna_count", nil
	}

	return "", fmt.Errorf("%w: %q", quota.ErrInvalidCapability, capability)
}

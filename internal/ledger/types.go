package ledger

import (
	"context"
	"errors"
	"time"

	"codeberg.org/studyhall/server/internal/quota"
)

// DayLayout is the key format for a usage day.
const DayLayout = "2006-01-02"

// Day is a UTC calendar date in YYYY-MM-DD form.
type Day string

var ErrLedgerUnavailable = errors.New("usage ledger unavailable")

// UsageRecord holds one user's counters for one UTC day.
type UsageRecord struct {
	UserID         string    `json:"user_id" bson:"user_id"`
	Day            Day       `json:"day" bson:"day"`
	QnACount       int64     `json:"qna_count" bson:"qna_count"`
	FlashcardCount int64     `json:"flashcard_count" bson:"flashcard_count"`
	QuizCount      int64     `json:"quiz_count" bson:"quiz_count"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists usage records. ConsumeIfBelow must increment the capability
// counter by one only when it is below limit, as a single atomic operation,
// creating the record if missing. A negative limit increments unconditionally.
// When ok is false count is the current value and nothing was written.
type Store interface {
	Find(ctx context.Context, userID string, day Day) (*UsageRecord, error)
	ConsumeIfBelow(ctx context.Context, userID string, day Day, capability quota.Capability, limit int64) (count int64, ok bool, err error)
	ListSince(ctx context.Context, userID string, since Day) ([]UsageRecord, error)
	DeleteBefore(ctx context.Context, day Day) (int64, error)
}

// Observer receives decision and failure events, e.g. for metrics.
type Observer interface {
	ObserveDecision(capability quota.Capability, tier quota.Tier, allowed bool)
	ObserveError(operation string)
}

type Ledger struct {
	store    Store
	policy   *quota.Policy
	now      func() time.Time
	observer Observer
}

type Option func(*Ledger)

type noopObserver struct{}

func (noopObserver) ObserveDecision(quota.Capability, quota.Tier, bool) {}
func (noopObserver) ObserveError(string)                                {}

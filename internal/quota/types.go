package quota

import "errors"

// Unlimited marks a capability with no daily cap.
const Unlimited int64 = -1

type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

type Capability string

const (
	CapabilityFlashcards Capability = "flashcard_generation"
	CapabilityQuizzes    Capability = "quiz_generation"
	CapabilityTutorQnA   Capability = "tutor_qna"
)

// Capabilities lists every metered capability in a stable order.
var Capabilities = []Capability{CapabilityFlashcards, CapabilityQuizzes, CapabilityTutorQnA}

var (
	ErrInvalidCapability = errors.New("invalid capability")
	ErrQuotaExceeded     = errors.New("quota exceeded")
)

// Decision is the outcome of checking a capability against a tier's daily limit.
type Decision struct {
	Capability Capability `json:"capability"`
	Allowed    bool       `json:"allowed"`
	Limit      int64      `json:"limit"`
	Current    int64      `json:"current"`
	Remaining  int64      `json:"remaining"`
}

// free tier limits, paid is unlimited for everything
type Limits struct {
	FreeFlashcards int64
	FreeQuizzes    int64
	FreeTutorQnA   int64
}

type Policy struct {
	table map[Tier]map[Capability]int64
}

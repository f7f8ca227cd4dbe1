package usage

import (
	"context"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/ledger"
	"codeberg.org/studyhall/server/internal/quota"
)

// days of history returned alongside today's counters
const historyDays = 30

type UsageReader interface {
	Usage(ctx context.Context, userID string) (ledger.UsageRecord, error)
	History(ctx context.Context, userID string, days int) ([]ledger.UsageRecord, error)
}

type Dependencies struct {
	Ledger UsageReader
	Policy *quota.Policy
	Tiers  metering.TierResolver
}

type CapabilityUsage struct {
	Used      int64 `json:"used"`
	Limit     int64 `json:"limit"`
	Remaining int64 `json:"remaining"`
}

type UsageResponse struct {
	Plan    quota.Tier                           `json:"plan"`
	Day     ledger.Day                           `json:"day"`
	Today   map[quota.Capability]CapabilityUsage `json:"today"`
	History []ledger.UsageRecord                 `json:"history"`
}

package metering

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/internal/ledger"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/studyhall/users"
)

// ledger calls retried on ErrLedgerUnavailable before failing closed
const consumeAttempts = 3

// resolves a user's plan tier
type TierResolver interface {
	Tier(ctx context.Context, userID string) (quota.Tier, error)
}

// adapts a function to TierResolver
type TierFunc func(ctx context.Context, userID string) (quota.Tier, error)

func (f TierFunc) Tier(ctx context.Context, userID string) (quota.Tier, error) {
	return f(ctx, userID)
}

// charges metered capabilities against the usage ledger before work starts
type Meter struct {
	ledger *ledger.Ledger
	tiers  TierResolver
}

func New(l *ledger.Ledger, tiers TierResolver) *Meter {
	return &Meter{ledger: l, tiers: tiers}
}

// Consume charges one unit of capability for userID. When it returns false the
// response has already been written: 402 on denial, 503 when the ledger is
// unreachable, 401 when the account no longer exists.
func (m *Meter) Consume(c *gin.Context, userID string, capability quota.Capability) (quota.Decision, bool) {
	ctx := c.Request.Context()

	tier, err := m.tiers.Tier(ctx, userID)
	if err != nil {
		if stderrors.Is(err, users.ErrUserNotFound) {
			errors.Unauthorized(c, "account not found")
			return quota.Decision{}, false
		}

		errors.InternalError(c, "failed to resolve plan", err)
		return quota.Decision{}, false
	}

	// a retry after a write that landed but errored charges twice; over-charging
	// is preferred to giving away a use the ledger never recorded
	decision, err := ledger.RetryConsume(ctx, m.ledger, userID, capability, tier, consumeAttempts)
	if err != nil {
		if stderrors.Is(err, ledger.ErrLedgerUnavailable) {
			errors.ServiceUnavailable(c, "usage tracking is temporarily unavailable", err)
			return quota.Decision{}, false
		}

		errors.InternalError(c, "failed to check usage", err)
		return quota.Decision{}, false
	}

	setQuotaHeaders(c, decision)

	if !decision.Allowed {
		errors.QuotaExceeded(c, string(capability), decision.Limit)
		return decision, false
	}

	return decision, true
}

func setQuotaHeaders(c *gin.Context, decision quota.Decision) {
	if decision.Limit == quota.Unlimited {
		return
	}

	c.Header("X-Quota-Limit", strconv.FormatInt(decision.Limit, 10))
	c.Header("X-Quota-Remaining", strconv.FormatInt(max(decision.Remaining, 0), 10))
}

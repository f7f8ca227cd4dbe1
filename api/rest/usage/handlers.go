package usage

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/internal/ledger"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/studyhall/users"
)

// GetUsageHandler godoc
// @Summary Get usage
// @Description Returns the caller's plan, today's usage per capability and the last 30 days of records. A limit or remaining of -1 means unlimited.
// @Tags usage
// @Produce json
// @Success 200 {object} UsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/usage [get]
// @Security BearerAuth
func GetUsageHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		ctx := c.Request.Context()

		tier, err := deps.Tiers.Tier(ctx, userID)
		if err != nil {
			if stderrors.Is(err, users.ErrUserNotFound) {
				errors.Unauthorized(c, "account not found")
				return
			}

			errors.InternalError(c, "failed to resolve plan", err)
			return
		}

		record, err := deps.Ledger.Usage(ctx, userID)
		if err != nil {
			ledgerError(c, err)
			return
		}

		history, err := deps.Ledger.History(ctx, userID, historyDays)
		if err != nil {
			ledgerError(c, err)
			return
		}

		today := make(map[quota.Capability]CapabilityUsage, len(quota.Capabilities))
		for _, capability := range quota.Capabilities {
			decision, err := deps.Policy.Evaluate(tier, capability, record.Count(capability))
			if err != nil {
				errors.InternalError(c, "failed to evaluate usage", err)
				return
			}

			today[capability] = CapabilityUsage{
				Used:      decision.Current,
				Limit:     decision.Limit,
				Remaining: decision.Remaining,
			}
		}

		if history == nil {
			history = []ledger.UsageRecord{}
		}

		c.JSON(http.StatusOK, UsageResponse{
			Plan:    tier,
			Day:     record.Day,
			Today:   today,
			History: history,
		})
	}
}

func ledgerError(c *gin.Context, err error) {
	if stderrors.Is(err, ledger.ErrLedgerUnavailable) {
		errors.ServiceUnavailable(c, "usage tracking is temporarily unavailable", err)
		return
	}

	errors.InternalError(c, "failed to load usage", err)
}

package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"codeberg.org/studyhall/server/internal/quota"
)

// RetryConsume calls TryConsume until it stops failing with ErrLedgerUnavailable
// or attempts run out. Other errors are returned immediately. A store error
// after the write reached the backend may still have counted, so a retry can
// charge that use twice.
func RetryConsume(ctx context.Context, l *Ledger, userID string, capability quota.Capability, tier quota.Tier, attempts uint) (quota.Decision, error) {
	if attempts == 0 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second

	return backoff.Retry(ctx, func() (quota.Decision, error) {
		decision, err := l.TryConsume(ctx, userID, capability, tier)
		if err != nil && !errors.Is(err, ErrLedgerUnavailable) {
			return decision, backoff.Permanent(err)
		}

		return decision, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(attempts))
}

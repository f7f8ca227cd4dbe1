package ledger

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/studyhall/server/internal/quota"
)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		if o != nil {
			l.observer = o
		}
	}
}

func New(store Store, policy *quota.Policy, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		policy:   policy,
		now:      time.Now,
		observer: noopObserver{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Today is the ledger's current UTC day.
func (l *Ledger) Today() Day {
	return DayOf(l.now())
}

// GetTodayCount returns today's count for a capability. A missing record reads
// as zero and is not created.
func (l *Ledger) GetTodayCount(ctx context.Context, userID string, capability quota.Capability) (int64, error) {
	if !capability.Valid() {
		return 0, fmt.Errorf("%w: %q", quota.ErrInvalidCapability, capability)
	}

	record, err := l.store.Find(ctx, userID, l.Today())
	if err != nil {
		l.observer.ObserveError("get_today_count")
		return 0, fmt.Errorf("%w: find usage: %w", ErrLedgerUnavailable, err)
	}

	if record == nil {
		return 0, nil
	}

	return record.Count(capability), nil
}

// TryConsume checks the capability against the tier's limit and, when allowed,
// records one use. Check and increment are a single store operation so
// concurrent callers cannot both take the last unit. A denial is reported in
// the decision, not as an error.
//
// A zero limit denies without touching the store, so the decision's Current
// is always 0 there even when a count was recorded under an earlier limit.
func (l *Ledger) TryConsume(ctx context.Context, userID string, capability quota.Capability, tier quota.Tier) (quota.Decision, error) {
	limit, err := l.policy.Limit(tier, capability)
	if err != nil {
		return quota.Decision{}, err
	}

	if limit == 0 {
		l.observer.ObserveDecision(capability, tier, false)
		// stored count is not read
		return quota.Decide(capability, 0, 0), nil
	}

	count, ok, err := l.store.ConsumeIfBelow(ctx, userID, l.Today(), capability, limit)
	if err != nil {
		l.observer.ObserveError("try_consume")
		return quota.Decision{}, fmt.Errorf("%w: consume %s: %w", ErrLedgerUnavailable, capability, err)
	}

	l.observer.ObserveDecision(capability, tier, ok)

	decision := quota.Decide(capability, limit, count)
	if ok {
		// count already includes this use
		decision.Allowed = true
	}

	return decision, nil
}

// Usage returns today's record, zero-valued when nothing was consumed yet.
func (l *Ledger) Usage(ctx context.Context, userID string) (UsageRecord, error) {
	today := l.Today()

	record, err := l.store.Find(ctx, userID, today)
	if err != nil {
		l.observer.ObserveError("usage")
		return UsageRecord{}, fmt.Errorf("%w: find usage: %w", ErrLedgerUnavailable, err)
	}

	if record == nil {
		return UsageRecord{UserID: userID, Day: today}, nil
	}

	return *record, nil
}

// History returns the records of the last days days including today, oldest first.
func (l *Ledger) History(ctx context.Context, userID string, days int) ([]UsageRecord, error) {
	if days < 1 {
		days = 1
	}

	since := l.Today().AddDays(-(days - 1))

	records, err := l.store.ListSince(ctx, userID, since)
	if err != nil {
		l.observer.ObserveError("history")
		return nil, fmt.Errorf("%w: list usage: %w", ErrLedgerUnavailable, err)
	}

	return records, nil
}

// Prune deletes records older than retentionDays. Zero keeps everything.
func (l *Ledger) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := l.Today().AddDays(-retentionDays)

	deleted, err := l.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		l.observer.ObserveError("prune")
		return 0, fmt.Errorf("%w: delete usage before %s: %w", ErrLedgerUnavailable, cutoff, err)
	}

	return deleted, nil
}

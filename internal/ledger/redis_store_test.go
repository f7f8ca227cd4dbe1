package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/studyhall/server/internal/quota"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, 48*time.Hour), mr
}

func TestRedisStore_ConsumeIfBelow(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)
	day := Day("2025-03-14")

	for i := int64(1); i <= 3; i++ {
		count, ok, err := store.ConsumeIfBelow(ctx, "u1", day, quota.CapabilityFlashcards, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, count)
	}

	count, ok, err := store.ConsumeIfBelow(ctx, "u1", day, quota.CapabilityFlashcards, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(3), count)

	record, err := store.Find(ctx, "u1", day)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(3), record.FlashcardCount)
	assert.Equal(t, int64(0), record.QnACount)
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestRedisStore_ZeroAndUnlimited(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)
	day := Day("2025-03-14")

	_, ok, err := store.ConsumeIfBelow(ctx, "u1", day, quota.CapabilityQuizzes, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	record, err := store.Find(ctx, "u1", day)
	require.NoError(t, err)
	assert.Nil(t, record)

	for i := 0; i < 20; i++ {
		_, ok, err := store.ConsumeIfBelow(ctx, "u1", day, quota.CapabilityQuizzes, quota.Unlimited)
		require.NoError(t, err)
		require.True(t, ok)
	}

	record, err = store.Find(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, int64(20), record.QuizCount)
}

func TestRedisStore_ConcurrentLastUnit(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)
	l := New(store, quota.NewPolicy(quota.Limits{FreeTutorQnA: 10}),
		WithClock(func() time.Time { return day0 }))

	for i := 0; i < 9; i++ {
		_, err := l.TryConsume(ctx, "u1", quota.CapabilityTutorQnA, quota.TierFree)
		require.NoError(t, err)
	}

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)

	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.TryConsume(ctx, "u1", quota.CapabilityTutorQnA, quota.TierFree)
			if assert.NoError(t, err) && d.Allowed {
				success.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())

	count, err := l.GetTodayCount(ctx, "u1", quota.CapabilityTutorQnA)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}

func TestRedisStore_ConsumeMaintainsIndexes(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	day := Day("2025-03-14")

	_, ok, err := store.ConsumeIfBelow(ctx, "u1", day, quota.CapabilityTutorQnA, 10)
	require.NoError(t, err)
	require.True(t, ok)

	days, err := mr.ZMembers(userIndexKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, []string{string(day)}, days)

	records, err := mr.ZMembers(redisIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{recordKeyFor("u1", day)}, records)

	// a denial writes neither index
	_, ok, err = store.ConsumeIfBelow(ctx, "u2", day, quota.CapabilityTutorQnA, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(userIndexKey("u2")))

	records, err = mr.ZMembers(redisIndexKey)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRedisStore_ConsumeContract(t *testing.T) {
	store, _ := newTestRedisStore(t)
	runConsumeContract(t, store)
}

func TestRedisStore_ListSinceAndDeleteBefore(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	days := []Day{"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13"}
	for _, d := range days {
		_, _, err := store.ConsumeIfBelow(ctx, "u1", d, quota.CapabilityTutorQnA, 10)
		require.NoError(t, err)
	}
	_, _, err := store.ConsumeIfBelow(ctx, "u2", "2025-03-10", quota.CapabilityTutorQnA, 10)
	require.NoError(t, err)

	records, err := store.ListSince(ctx, "u1", "2025-03-12")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Day("2025-03-12"), records[0].Day)
	assert.Equal(t, Day("2025-03-13"), records[1].Day)
	assert.Equal(t, "u1", records[0].UserID)

	deleted, err := store.DeleteBefore(ctx, "2025-03-12")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	records, err = store.ListSince(ctx, "u1", "2025-01-01")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	gone, err := store.Find(ctx, "u2", "2025-03-10")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRedisStore_RecordsExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	day := Day("2025-03-14")

	_, _, err := store.ConsumeIfBelow(ctx, "u1", day, quota.CapabilityFlashcards, 5)
	require.NoError(t, err)

	mr.FastForward(49 * time.Hour)

	record, err := store.Find(ctx, "u1", day)
	require.NoError(t, err)
	assert.Nil(t, record)

	records, err := store.ListSince(ctx, "u1", "2025-01-01")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	l := New(store, quota.NewPolicy(quota.DefaultLimits()))

	mr.Close()

	_, err := l.TryConsume(ctx, "u1", quota.CapabilityTutorQnA, quota.TierFree)
	assert.ErrorIs(t, err, ErrLedgerUnavailable)
}

package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/studyhall/server/internal/quota"
)

const (
	redisKeyPrefix = "usage:"
	redisIndexKey  = "usage:index"
)

// KEYS[1] record hash, KEYS[2] per-user day index, KEYS[3] global index
// ARGV: field, limit, updated_at, ttl seconds, day score, day
var consumeScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
local limit = tonumber(ARGV[2])
if limit >= 0 and current >= limit then
	return {0, current}
end
local count = redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
redis.call('HSET', KEYS[1], 'updated_at', ARGV[3])
redis.call('EXPIRE', KEYS[1], ARGV[4])
redis.call('ZADD', KEYS[2], ARGV[5], ARGV[6])
redis.call('EXPIRE', KEYS[2], ARGV[4])
redis.call('ZADD', KEYS[3], ARGV[5], KEYS[1])
return {1, count}
`)

// RedisStore keeps one hash per (user, day). The consume script runs
// atomically on the server so it is safe across replicas. The script writes
// keys from different hash slots, so cluster clients are not accepted.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// ttl should cover the retention window so history reads stay complete.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}

	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func recordKeyFor(userID string, day Day) string {
	return redisKeyPrefix + userID + ":" + string(day)
}

func userIndexKey(userID string) string {
	return redisKeyPrefix + "days:" + userID
}

func dayScore(day Day) float64 {
	return float64(day.Time().Unix() / 86400)
}

func (s *RedisStore) Find(ctx context.Context, userID string, day Day) (*UsageRecord, error) {
	values, err := s.client.HGetAll(ctx, recordKeyFor(userID, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage hash: %w", err)
	}

	if len(values) == 0 {
		return nil, nil
	}

	record, err := parseUsageHash(userID, day, values)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *RedisStore) ConsumeIfBelow(ctx context.Context, userID string, day Day, capability quota.Capability, limit int64) (int64, bool, error) {
	field, err := counterField(capability)
	if err != nil {
		return 0, false, err
	}

	keys := []string{recordKeyFor(userID, day), userIndexKey(userID), redisIndexKey}
	args := []any{
		field,
		limit,
		s.now().UTC().Format(time.RFC3339Nano),
		int64(s.ttl / time.Second),
		dayScore(day),
		string(day),
	}

	result, err := consumeScript.Run(ctx, s.client, keys, args...).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("run consume script: %w", err)
	}

	if len(result) != 2 {
		return 0, false, fmt.Errorf("unexpected consume script reply: %v", result)
	}

	return result[1], result[0] == 1, nil
}

func (s *RedisStore) ListSince(ctx context.Context, userID string, since Day) ([]UsageRecord, error) {
	days, err := s.client.ZRangeByScore(ctx, userIndexKey(userID), &redis.ZRangeBy{
		Min: strconv.FormatFloat(dayScore(since), 'f', 0, 64),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage day index: %w", err)
	}

	if len(days) == 0 {
		return []UsageRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(days))
	for i, day := range days {
		cmds[i] = pipe.HGetAll(ctx, recordKeyFor(userID, Day(day)))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read usage hashes: %w", err)
	}

	records := make([]UsageRecord, 0, len(days))
	for i, cmd := range cmds {
		values := cmd.Val()
		// expired hashes can outlive their index entry
		if len(values) == 0 {
			continue
		}

		record, err := parseUsageHash(userID, Day(days[i]), values)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

func (s *RedisStore) DeleteBefore(ctx context.Context, day Day) (int64, error) {
	maxScore := "(" + strconv.FormatFloat(dayScore(day), 'f', 0, 64)

	keys, err := s.client.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: maxScore,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("read usage index: %w", err)
	}

	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete usage hashes: %w", err)
	}

	if err := s.client.ZRemRangeByScore(ctx, redisIndexKey, "-inf", maxScore).Err(); err != nil {
		return deleted, fmt.Errorf("trim usage index: %w", err)
	}

	return deleted, nil
}

func parseUsageHash(userID string, day Day, values map[string]string) (UsageRecord, error) {
	record := UsageRecord{UserID: userID, Day: day}

	counters := map[string]*int64{
		"qna_count":       &record.QnACount,
		"flashcard_count": &record.FlashcardCount,
		"quiz_count":      &record.QuizCount,
	}

	for field, dest := range counters {
		raw, ok := values[field]
		if !ok {
			continue
		}

		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return UsageRecord{}, fmt.Errorf("parse %s: %w", field, err)
		}

		*dest = v
	}

	if raw, ok := values["updated_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return UsageRecord{}, fmt.Errorf("parse updated_at: %w", err)
		}

		record.UpdatedAt = t
	}

	return record, nil
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  count = count + 1
  allowed = 1
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then
  oldestScore = tonumber(oldest[2])
end
return {allowed, count, oldestScore}
`)

// RedisStore keeps one sorted set per key, scored by hit time in milliseconds, so every
// instance sharing the redis sees the same window.
type RedisStore struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Hit(c context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.now().UnixMilli()
	values, err := slidingWindow.Run(
		c,
		s.client,
		[]string{key},
		now,
		window.Milliseconds(),
		limit,
		fmt.Sprintf("%d-%s", now, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("failed running sliding window script with error=%w", err)
	}
	if len(values) != 3 {
		return Result{}, fmt.Errorf("unexpected sliding window reply length=%d", len(values))
	}

	retryAfter := time.Duration(values[2]+window.Milliseconds()-now) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = 0
	}
	return Result{Allowed: values[0] == 1, Count: int(values[1]), RetryAfter: retryAfter}, nil
}

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admissionScript evicts the expired prefix, counts the window and records
// the request in one atomic step, so concurrent callers on any instance
// serialize on the Redis side and the quota can never be exceeded.
// Returns 1 when admitted, 0 when rejected.
var admissionScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisSlidingWindow is the shared-state variant of SlidingWindow, for
// deployments where several instances must agree on one quota. Timestamps
// live in a sorted set per identity, scored by unix nanoseconds.
type RedisSlidingWindow struct {
	client      *redis.Client
	keyPrefix   string
	maxRequests int
	window      time.Duration
}

// NewRedisSlidingWindow creates a Redis-backed limiter. Keys are namespaced
// under keyPrefix so unrelated applications can share the instance.
func NewRedisSlidingWindow(client *redis.Client, keyPrefix string, maxRequests int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		client:      client,
		keyPrefix:   keyPrefix,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Admit applies the same admission rule as the in-memory limiter against
// shared Redis state. Infrastructure failures surface as errors so the
// caller can choose its degradation policy.
func (rl *RedisSlidingWindow) Admit(ctx context.Context, identity string, now time.Time) (bool, error) {
	if rl.maxRequests <= 0 {
		return false, nil
	}

	// Exclusive cutoff: entries scored exactly at now-window are still in
	// the window, matching the in-memory eviction rule.
	cutoff := "(" + strconv.FormatInt(now.Add(-rl.window).UnixNano(), 10)

	admitted, err := admissionScript.Run(ctx, rl.client,
		[]string{rl.key(identity)},
		cutoff,
		rl.maxRequests,
		now.UnixNano(),
		uuid.NewString(),
		(rl.window + time.Second).Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit admission: %w", err)
	}

	return admitted == 1, nil
}

func (rl *RedisSlidingWindow) key(identity string) string {
	return rl.keyPrefix + ":ratelimit:" + identity
}

package idempotency

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	scriptDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "party360_idempotency_script_duration_ms",
		Help:    "Latency of idempotency record transitions in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	}, []string{"script"})
)

// RedisStore is the Redis-backed RecordStore. Each transition runs as a Lua
// script (EVALSHA with EVAL fallback), so concurrent callers on one key are
// serialized by Redis itself.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an already-connected client. The caller owns the
// client's lifecycle.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) CreateOrValidate(ctx context.Context, key, fingerprint string, pendingTTL time.Duration) (Outcome, error) {
	defer observeScript("create_or_validate", time.Now())

	res, err := createOrValidateScript.Run(ctx, s.client, []string{key}, fingerprint, ttlSeconds(pendingTTL)).Text()
	if err != nil {
		return "", fmt.Errorf("create-or-validate %s: %w", key, err)
	}
	return Outcome(res), nil
}

func (s *RedisStore) CompleteSuccess(ctx context.Context, key, fingerprint string, payload []byte, doneTTL time.Duration) (CompleteResult, error) {
	defer observeScript("complete_success", time.Now())

	res, err := completeSuccessScript.Run(ctx, s.client, []string{key}, fingerprint, payload, ttlSeconds(doneTTL)).Text()
	if err != nil {
		return "", fmt.Errorf("complete-success %s: %w", key, err)
	}
	return CompleteResult(res), nil
}

func (s *RedisStore) CleanOnFailure(ctx context.Context, key string) error {
	defer observeScript("clean_on_failure", time.Now())

	if err := cleanOnFailureScript.Run(ctx, s.client, []string{key}).Err(); err != nil {
		return fmt.Errorf("clean-on-failure %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Status(ctx context.Context, key string) (Status, error) {
	status, err := s.client.HGet(ctx, key, fieldStatus).Result()
	if errors.Is(err, redis.Nil) {
		return StatusAbsent, nil
	}
	if err != nil {
		return StatusAbsent, fmt.Errorf("read status %s: %w", key, err)
	}
	return Status(status), nil
}

func (s *RedisStore) Fetch(ctx context.Context, key string) (Record, bool, error) {
	vals, err := s.client.HMGet(ctx, key, fieldHash, fieldStatus, fieldPayload, fieldTS).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("fetch %s: %w", key, err)
	}
	hash, ok := vals[0].(string)
	if !ok {
		return Record{}, false, nil
	}

	rec := Record{Fingerprint: hash}
	if status, ok := vals[1].(string); ok {
		rec.Status = Status(status)
	}
	if payload, ok := vals[2].(string); ok {
		rec.Payload = []byte(payload)
	}
	if ts, ok := vals[3].(string); ok {
		if secs, err := strconv.ParseInt(ts, 10, 64); err == nil {
			rec.CreatedAt = time.Unix(secs, 0).UTC()
		}
	}
	return rec, true, nil
}

// ttlSeconds rounds up so sub-second lifetimes never become EXPIRE 0, which
// would delete the key immediately.
func ttlSeconds(d time.Duration) int64 {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func observeScript(name string, start time.Time) {
	scriptDurationMs.WithLabelValues(name).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

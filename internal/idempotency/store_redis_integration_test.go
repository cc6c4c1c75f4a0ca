//go:build integration

package idempotency_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"party360/internal/idempotency"
	"party360/internal/platform/config"
	"party360/internal/platform/logger"
	"party360/pkg/testutil/containers"
)

type cachedParty struct {
	ID string `json:"id"`
}

func (cachedParty) IdempotencyKind() string { return "itest.cached_party.v1" }

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *idempotency.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = idempotency.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestTransitions() {
	ctx := context.Background()
	key := idempotency.RecordKey("party:create:person", uuid.New())

	state, err := s.store.CreateOrValidate(ctx, key, "h1", 30*time.Second)
	s.Require().NoError(err)
	s.Equal(idempotency.OutcomeCreated, state)

	ttl, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.InDelta(30*time.Second, ttl, float64(2*time.Second))

	state, err = s.store.CreateOrValidate(ctx, key, "h1", 30*time.Second)
	s.Require().NoError(err)
	s.Equal(idempotency.OutcomePending, state)

	state, err = s.store.CreateOrValidate(ctx, key, "h2", 30*time.Second)
	s.Require().NoError(err)
	s.Equal(idempotency.OutcomeHashMismatch, state)

	res, err := s.store.CompleteSuccess(ctx, key, "h2", []byte("nope"), time.Hour)
	s.Require().NoError(err)
	s.Equal(idempotency.CompleteHashMismatch, res)

	payload := []byte{0x00, 0xff, '{', '}'}
	res, err = s.store.CompleteSuccess(ctx, key, "h1", payload, time.Hour)
	s.Require().NoError(err)
	s.Equal(idempotency.CompleteOK, res)

	ttl, err = s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.InDelta(time.Hour, ttl, float64(2*time.Second))

	res, err = s.store.CompleteSuccess(ctx, key, "h1", []byte("again"), time.Hour)
	s.Require().NoError(err)
	s.Equal(idempotency.CompleteAlreadyDone, res)

	rec, found, err := s.store.Fetch(ctx, key)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("h1", rec.Fingerprint)
	s.Equal(idempotency.StatusDone, rec.Status)
	s.Equal(payload, rec.Payload, "binary payloads survive the script boundary")
	s.False(rec.CreatedAt.IsZero())

	s.Require().NoError(s.store.CleanOnFailure(ctx, key))
	status, err := s.store.Status(ctx, key)
	s.Require().NoError(err)
	s.Equal(idempotency.StatusAbsent, status)

	res, err = s.store.CompleteSuccess(ctx, key, "h1", payload, time.Hour)
	s.Require().NoError(err)
	s.Equal(idempotency.CompleteMissing, res)
}

func (s *RedisStoreSuite) TestPendingClaimExpires() {
	ctx := context.Background()
	key := idempotency.RecordKey("party:create:person", uuid.New())

	_, err := s.store.CreateOrValidate(ctx, key, "h1", time.Second)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		status, err := s.store.Status(ctx, key)
		return err == nil && status == idempotency.StatusAbsent
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisStoreSuite) TestExactlyOneCreator() {
	ctx := context.Background()
	key := idempotency.RecordKey("party:create:person", uuid.New())

	const goroutines = 50
	var created, pending, other atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := s.store.CreateOrValidate(ctx, key, "h1", 30*time.Second)
			switch {
			case err != nil:
				other.Add(1)
			case state == idempotency.OutcomeCreated:
				created.Add(1)
			case state == idempotency.OutcomePending:
				pending.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())
	s.Equal(int32(goroutines-1), pending.Load())
	s.Equal(int32(0), other.Load())
}

func (s *RedisStoreSuite) TestCoordinatorAgainstRedis() {
	ctx := context.Background()
	codec := idempotency.NewCodec()
	idempotency.Register[cachedParty](codec)
	coord, err := idempotency.New(s.store, codec, config.DefaultIdempotency(), idempotency.WithLogger(logger.Discard()))
	s.Require().NoError(err)

	key := uuid.New()
	var calls, hits atomic.Int32
	req := idempotency.Request{
		Opcode:      "party:create:person",
		Key:         key,
		Fingerprint: []byte("H1"),
		OnCacheHit:  func() { hits.Add(1) },
	}

	const callers = 10
	results := make([]cachedParty, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = idempotency.Execute(ctx, coord, req, func(context.Context) (cachedParty, error) {
				calls.Add(1)
				time.Sleep(100 * time.Millisecond)
				return cachedParty{ID: "p1"}, nil
			})
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), calls.Load())
	s.Equal(int32(callers-1), hits.Load())
	for i := range results {
		s.Require().NoError(errs[i])
		s.Equal("p1", results[i].ID)
	}
}

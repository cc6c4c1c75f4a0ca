// Package idempotency guarantees that an operation identified by a
// client-supplied key runs its side effects at most once, even when duplicate
// requests race each other, callers retry with the same or a different body,
// or a leader crashes mid-flight.
//
// Records live in a shared store (Redis in production). The first caller for
// a key becomes leader and runs the work; concurrent callers with the same
// fingerprint wait a bounded time for the leader's cached result. A follower
// whose wait expires re-issues the create-or-validate transition and becomes
// leader if the previous claim has lapsed. If a leader outlives its pending
// TTL, a second leader can therefore run the same work; keep WaitMax well
// below PendingTTL and make downstream writes idempotent on their own keys
// when duplicate external effects are unacceptable. The record transition is
// atomic, the work's side effects are not transactional with it.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"party360/internal/platform/config"
	dErrors "party360/pkg/domain-errors"
)

const tracerName = "party360/internal/idempotency"

// Coordinator orchestrates the leader/follower protocol over a RecordStore.
type Coordinator struct {
	store  RecordStore
	codec  *Codec
	cfg    config.IdempotencyConfig
	clock  Clock
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for degraded-path warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithClock replaces the wall clock used by the follower poller.
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// New builds a coordinator. Hard configuration errors are rejected; a wait
// bound that is not below the pending TTL is accepted with a warning.
func New(store RecordStore, codec *Codec, cfg config.IdempotencyConfig, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency: record store is required")
	}
	if codec == nil {
		return nil, fmt.Errorf("idempotency: codec is required")
	}
	c := &Coordinator{
		store:  store,
		codec:  codec,
		cfg:    cfg,
		clock:  systemClock{},
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, config.ErrWaitExceedsPendingTTL) {
			return nil, fmt.Errorf("idempotency: %w", err)
		}
		c.logger.Warn("idempotency wait bound reaches pending ttl; duplicate leaders become possible",
			"wait_max", cfg.WaitMax,
			"pending_ttl", cfg.PendingTTL,
		)
	}
	return c, nil
}

// Request addresses one record and carries the request digest.
type Request struct {
	Opcode      string
	Key         uuid.UUID
	Fingerprint []byte
	// OnCacheHit runs only when a previously computed result is replayed.
	OnCacheHit func()
}

// Execute runs work at most once per (opcode, key) and returns its result,
// or the cached result of an earlier execution with the same fingerprint.
// Errors from work are returned unchanged after the pending claim is
// released so the caller can retry with the same key. T must be the value
// type registered with the codec; pointer types are rejected before work runs.
func Execute[T Cacheable](ctx context.Context, c *Coordinator, req Request, work func(context.Context) (T, error)) (T, error) {
	var zero T
	if work == nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "idempotent work is required")
	}
	if isPointer[T]() {
		return zero, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("idempotent result type %T must not be a pointer", zero))
	}
	res, err := c.execute(ctx, req, func(ctx context.Context) (Cacheable, error) {
		return work(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, inconsistentError(fmt.Sprintf("cached result has kind %q, want %T", res.IdempotencyKind(), zero), nil)
	}
	return typed, nil
}

func (c *Coordinator) execute(ctx context.Context, req Request, work func(context.Context) (Cacheable, error)) (result Cacheable, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "idempotency.Execute", trace.WithAttributes(
		attribute.String("idempotency.opcode", req.Opcode),
	))
	outcome := labelError
	defer func() {
		executeOutcomes.WithLabelValues(req.Opcode, outcome).Inc()
		span.SetAttributes(attribute.String("idempotency.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	key := RecordKey(req.Opcode, req.Key)
	fingerprint := EncodeFingerprint(req.Fingerprint)

	state, err := c.store.CreateOrValidate(ctx, key, fingerprint, c.cfg.PendingTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create idempotency record")
	}

	switch state {
	case OutcomeHashMismatch:
		outcome = labelConflict
		return nil, conflictError()

	case OutcomeDone:
		v, err := c.fetch(ctx, key, fingerprint)
		if err != nil {
			return nil, err
		}
		outcome = labelReplay
		c.hit(req)
		return v, nil

	case OutcomePending:
		start := c.clock.Now()
		v, ok, err := c.waitAndReuse(ctx, key, fingerprint)
		followerWaitSeconds.WithLabelValues(req.Opcode, fmt.Sprint(ok)).Observe(c.clock.Now().Sub(start).Seconds())
		if err != nil {
			return nil, err
		}
		if ok {
			outcome = labelFollowerReplay
			c.hit(req)
			return v, nil
		}
		return c.promote(ctx, req, key, fingerprint, work, &outcome)

	case OutcomeCreated:
		outcome = labelLeader
		return c.lead(ctx, req, key, fingerprint, work, &outcome)

	default:
		return nil, protocolError(string(state))
	}
}

// promote re-issues create-or-validate after a follower's wait expired. Only
// a lapsed or released claim makes the follower leader; a claim that is still
// held surfaces as ErrInProgress for the caller to retry.
func (c *Coordinator) promote(ctx context.Context, req Request, key, fingerprint string, work func(context.Context) (Cacheable, error), outcome *string) (Cacheable, error) {
	state, err := c.store.CreateOrValidate(ctx, key, fingerprint, c.cfg.PendingTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "re-validate idempotency record")
	}

	switch state {
	case OutcomeCreated:
		*outcome = labelPromoted
		c.logger.InfoContext(ctx, "follower promoted to idempotency leader",
			"opcode", req.Opcode,
			"idempotency_key", req.Key,
		)
		return c.lead(ctx, req, key, fingerprint, work, outcome)
	case OutcomeDone:
		v, err := c.fetch(ctx, key, fingerprint)
		if err != nil {
			return nil, err
		}
		*outcome = labelFollowerReplay
		c.hit(req)
		return v, nil
	case OutcomeHashMismatch:
		*outcome = labelConflict
		return nil, conflictError()
	case OutcomePending:
		*outcome = labelInProgress
		return nil, inProgressError()
	default:
		return nil, protocolError(string(state))
	}
}

// lead runs work as the record's leader and completes or releases the record.
func (c *Coordinator) lead(ctx context.Context, req Request, key, fingerprint string, work func(context.Context) (Cacheable, error), outcome *string) (Cacheable, error) {
	result, err := c.runWork(ctx, key, work)
	if err != nil {
		*outcome = labelWorkFailed
		return nil, err
	}

	payload, err := c.codec.Encode(result)
	if err != nil {
		// A result that cannot be encoded is a programming error. The claim
		// is kept so the failure is not masked by a silent re-execution.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode idempotent result")
	}
	if len(payload) > c.cfg.MaxPayloadSize {
		*outcome = labelTooLarge
		c.logger.ErrorContext(ctx, "idempotent result exceeds payload ceiling; leaving claim to expire",
			"opcode", req.Opcode,
			"idempotency_key", req.Key,
			"payload_bytes", len(payload),
			"max_payload_bytes", c.cfg.MaxPayloadSize,
		)
		return nil, payloadTooLargeError()
	}

	done, err := c.store.CompleteSuccess(ctx, key, fingerprint, payload, c.cfg.TTL)
	if err != nil {
		// Work already committed its effects; surfacing an error would invite
		// a retry that repeats them. The pending claim expires on its own.
		*outcome = labelCompleteLost
		c.logger.ErrorContext(ctx, "failed to complete idempotency record",
			"opcode", req.Opcode,
			"idempotency_key", req.Key,
			"error", err,
		)
		return result, nil
	}

	switch done {
	case CompleteOK:
		return result, nil
	case CompleteAlreadyDone:
		// Another leader finished first; replay its result so every caller
		// observes the same outcome.
		v, err := c.fetch(ctx, key, fingerprint)
		if err != nil {
			return nil, err
		}
		*outcome = labelRaceReplay
		c.hit(req)
		return v, nil
	case CompleteMissing, CompleteHashMismatch:
		*outcome = labelCompleteLost
		c.logger.WarnContext(ctx, "idempotency record lost before completion",
			"opcode", req.Opcode,
			"idempotency_key", req.Key,
			"state", string(done),
		)
		return result, nil
	default:
		return nil, protocolError(string(done))
	}
}

// runWork invokes work and releases the claim when it fails or panics.
func (c *Coordinator) runWork(ctx context.Context, key string, work func(context.Context) (Cacheable, error)) (result Cacheable, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.release(ctx, key)
			panic(r)
		}
	}()

	result, err = work(ctx)
	if err != nil {
		c.release(ctx, key)
		return nil, err
	}
	return result, nil
}

// release deletes the leader's claim on a best-effort basis. It detaches from
// ctx so a cancelled request still frees the key.
func (c *Coordinator) release(ctx context.Context, key string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := c.store.CleanOnFailure(cleanupCtx, key); err != nil {
		c.logger.WarnContext(ctx, "failed to release idempotency claim",
			"record_key", key,
			"error", err,
		)
	}
}

// fetch reads a DONE record's payload, re-checking the fingerprint in case
// the record was replaced between the status check and this read.
func (c *Coordinator) fetch(ctx context.Context, key, fingerprint string) (Cacheable, error) {
	rec, found, err := c.store.Fetch(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch idempotency record")
	}
	if !found {
		return nil, inconsistentError("idempotency record vanished", nil)
	}
	if rec.Fingerprint != fingerprint {
		return nil, conflictError()
	}
	if len(rec.Payload) == 0 {
		return nil, inconsistentError("payload missing for DONE record", nil)
	}
	v, err := c.codec.Decode(rec.Payload)
	if err != nil {
		return nil, inconsistentError("cached idempotent result is unreadable", err)
	}
	return v, nil
}

func (c *Coordinator) hit(req Request) {
	if req.OnCacheHit != nil {
		req.OnCacheHit()
	}
}

func validateRequest(req Request) error {
	switch {
	case req.Opcode == "":
		return dErrors.New(dErrors.CodeInvalidInput, "operation code is required")
	case req.Key == uuid.Nil:
		return dErrors.New(dErrors.CodeInvalidInput, "idempotency key is required")
	case len(req.Fingerprint) == 0:
		return dErrors.New(dErrors.CodeInvalidInput, "request fingerprint is required")
	}
	return nil
}

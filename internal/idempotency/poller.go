package idempotency

import (
	"context"
	"math/rand/v2"
	"time"

	dErrors "party360/pkg/domain-errors"
)

// Clock abstracts time for the follower poller so tests can drive it.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waitAndReuse polls the record until it turns DONE or the wait bound
// elapses. ok is false when no result was observed in time, which is a
// normal outcome: the leader may be slow or gone. A record that disappears
// while waiting (its leader failed and cleaned up) also ends the wait early.
func (c *Coordinator) waitAndReuse(ctx context.Context, key, fingerprint string) (result Cacheable, ok bool, err error) {
	start := c.clock.Now()
	deadline := start.Add(c.cfg.WaitMax)

	for c.clock.Now().Before(deadline) {
		status, err := c.store.Status(ctx, key)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "poll idempotency record")
		}
		switch status {
		case StatusDone:
			v, err := c.fetch(ctx, key, fingerprint)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		case StatusAbsent:
			return nil, false, nil
		}

		if err := c.clock.Sleep(ctx, c.backoff()); err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeTimeout, "waiting for idempotent leader")
		}
	}
	return nil, false, nil
}

// backoff draws a sleep uniformly from [BackoffMin, BackoffMax].
func (c *Coordinator) backoff() time.Duration {
	lo, hi := c.cfg.BackoffMin, c.cfg.BackoffMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}

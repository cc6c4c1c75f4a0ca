package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "party360_outbox_published_total",
		Help: "Outbox entries acknowledged by the broker",
	})
	relayFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "party360_outbox_publish_failures_total",
		Help: "Outbox relay batches that failed to publish",
	})
)

// Publisher delivers a batch and reports which entries were accepted.
type Publisher interface {
	Publish(ctx context.Context, entries []Entry) ([]uuid.UUID, error)
}

// Relay moves unpublished entries from a Source to a Publisher.
type Relay struct {
	source    Source
	publisher Publisher
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRelay(source Source, publisher Publisher, opts ...RelayOption) *Relay {
	r := &Relay{
		source:    source,
		publisher: publisher,
		batchSize: 100,
		interval:  500 * time.Millisecond,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Full batches are drained back to back.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				relayFailures.Inc()
				r.logger.WarnContext(ctx, "outbox relay batch failed", "error", err)
				break
			}
			if n < r.batchSize {
				break
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes at most one batch and returns how many entries were
// marked published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	n, err := r.source.Claim(ctx, r.batchSize, r.publisher.Publish)
	if n > 0 {
		relayPublished.Add(float64(n))
		r.logger.DebugContext(ctx, "outbox entries published", "count", n)
	}
	return n, err
}

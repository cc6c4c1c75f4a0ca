package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"party360/internal/idempotency"
	"party360/internal/integration/address"
	"party360/internal/integration/screening"
	"party360/internal/integration/tokenizer"
	jwttoken "party360/internal/jwt_token"
	"party360/internal/outbox"
	"party360/internal/party"
	partymetrics "party360/internal/party/metrics"
	"party360/internal/party/models"
	"party360/internal/party/service"
	"party360/internal/party/store"
	"party360/internal/platform/config"
	"party360/internal/platform/httpserver"
	"party360/internal/platform/logger"
	"party360/internal/platform/metrics"
	"party360/internal/platform/postgres"
	"party360/internal/platform/redis"
	httptransport "party360/internal/transport/http"
	"party360/pkg/platform/circuit"
)

const (
	topicPartitions  = 3
	topicReplication = 1
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("party360 exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("party360 stopped")
}

// run owns every long-lived resource. Each one is released in reverse order
// of acquisition when run returns.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("closing redis client", "error", err)
		}
	}()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	publisher, err := outbox.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer publisher.Close()
	if err := publisher.EnsureTopic(ctx, topicPartitions, topicReplication); err != nil {
		return fmt.Errorf("kafka topic %s: %w", cfg.Kafka.Topic, err)
	}

	codec := idempotency.NewCodec()
	idempotency.Register[models.CreatePartyResponse](codec)
	coordinator, err := idempotency.New(
		idempotency.NewRedisStore(redisClient.Client),
		codec,
		cfg.Idempotency,
		idempotency.WithLogger(log),
	)
	if err != nil {
		return err
	}

	tokenClient, err := tokenizer.New(cfg.Tokenizer,
		tokenizer.WithLogger(log),
		tokenizer.WithBreaker(circuit.New("tokenizer")),
	)
	if err != nil {
		return fmt.Errorf("tokenizer: %w", err)
	}

	events := outbox.NewPostgres(db)
	screener := screening.NewOrchestrator(
		screening.MockKYCClient{Latency: 50 * time.Millisecond},
		screening.MockSanctionsClient{Latency: 50 * time.Millisecond},
		events,
		log,
	)

	partyService := party.NewService(
		coordinator,
		store.NewPostgres(db),
		tokenClient,
		address.NewStandardizer(),
		screener,
		events,
		service.WithLogger(log),
		service.WithMetrics(partymetrics.New(prometheus.DefaultRegisterer)),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    log,
		Validator: jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)),
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		Health: map[string]httptransport.HealthCheck{
			"redis":    redisClient.Health,
			"postgres": db.PingContext,
		},
		Handlers: []httptransport.RouteRegistrar{party.NewHandler(partyService, log)},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	relay := outbox.NewRelay(events, publisher,
		outbox.WithBatchSize(cfg.Kafka.BatchSize),
		outbox.WithPollInterval(cfg.Kafka.PollInterval),
		outbox.WithLogger(log),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting party360", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

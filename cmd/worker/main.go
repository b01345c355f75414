package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	"github.com/voicedrop/voicedrop-api/internal/repository/postgres"
	"github.com/voicedrop/voicedrop-api/pkg/logger"
	"github.com/voicedrop/voicedrop-api/pkg/messaging"
	"github.com/voicedrop/voicedrop-api/pkg/messaging/redis"
	"github.com/voicedrop/voicedrop-api/pkg/metrics"
)

type workerConfig struct {
	DatabaseURL  string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL     string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Channel      string        `envconfig:"EVENT_CHANNEL" default:"voicedrop.events"`
	BatchSize    int           `envconfig:"BATCH_SIZE" default:"100"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	HealthAddr   string        `envconfig:"HEALTH_ADDR" default:":8081"`
}

// The worker drains the outbox: events written transactionally with drop
// outcomes are published to Redis here, so the API never blocks on the
// broker and no outcome is lost when Redis is down.
type outboxWorker struct {
	repo     repository.OutboxRepository
	broker   messaging.Broker
	log      *logger.Logger
	metrics  *metrics.Metrics
	channel  string
	batch    int
	interval time.Duration
}

func (w *outboxWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *outboxWorker) drain(ctx context.Context) {
	events, err := w.repo.FetchPending(ctx, w.batch)
	if err != nil {
		w.log.Error(err, "failed to fetch pending events")
		return
	}

	for _, ev := range events {
		if err := w.publish(ctx, ev); err != nil {
			w.log.Error(err, "failed to publish event", "event_id", ev.ID.String())
			if err := w.repo.MarkFailed(ctx, ev.ID); err != nil {
				w.log.Error(err, "failed to mark event failed", "event_id", ev.ID.String())
			}
			w.metrics.OutboxEventsFailed.Inc()
			continue
		}

		if err := w.repo.MarkProcessed(ctx, ev.ID); err != nil {
			w.log.Error(err, "failed to mark event processed", "event_id", ev.ID.String())
			continue
		}
		w.metrics.OutboxEventsProcessed.Inc()
	}
}

func (w *outboxWorker) publish(ctx context.Context, ev *model.OutboxEvent) error {
	return w.broker.Publish(ctx, w.channel, messaging.Event{
		Type:    ev.EventType,
		Payload: ev.Payload,
	})
}

func serveHealth(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "health server failed")
		}
	}()
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logger.NewLogger(nil).Fatal(err, "failed to load worker configuration")
	}

	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel})
	zl := log.Zerolog()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, zl)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	serveHealth(cfg.HealthAddr, log)

	w := &outboxWorker{
		repo:     postgres.NewOutboxRepository(db),
		broker:   broker,
		log:      log,
		metrics:  metrics.NewMetrics("voicedrop_worker"),
		channel:  cfg.Channel,
		batch:    cfg.BatchSize,
		interval: cfg.PollInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.run(ctx)

	log.Info("outbox worker started", "channel", cfg.Channel, "interval", cfg.PollInterval.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	log.Info("outbox worker stopped")
}

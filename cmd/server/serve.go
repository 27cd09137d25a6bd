package main

import (
	"context"
	"database/sql"
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

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/admin"
	"msgbarrier/internal/barrier/gate"
	"msgbarrier/internal/barrier/handler"
	barriermetrics "msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/observability"
	"msgbarrier/internal/barrier/policies/admission"
	"msgbarrier/internal/barrier/policies/suspension"
	"msgbarrier/internal/barrier/policyconfig"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/internal/barrier/store/originlist"
	suspensionstore "msgbarrier/internal/barrier/store/suspension"
	"msgbarrier/internal/platform/config"
	"msgbarrier/internal/platform/httpserver"
	"msgbarrier/internal/platform/logger"
	"msgbarrier/internal/platform/metrics"
	"msgbarrier/internal/platform/middleware"
	"msgbarrier/internal/platform/postgres"
	redisclient "msgbarrier/internal/platform/redis"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/platform/audit/publisher"
	kafkastore "msgbarrier/pkg/platform/audit/store/kafka"
	auditmemory "msgbarrier/pkg/platform/audit/store/memory"
	auditpostgres "msgbarrier/pkg/platform/audit/store/postgres"
	"msgbarrier/pkg/platform/circuit"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute

	auditPartitions  = 3
	auditReplication = 1
)

// runServe wires high-level dependencies, exposes the HTTP router, and
// runs background loops until SIGINT or SIGTERM.
func runServe(parent context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	if cfg.UsesDevSigningKey() {
		log.Warn("admin API uses the development signing key; set ADMIN_JWT_SIGNING_KEY")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	m := barriermetrics.New(reg)

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close(log)

	pub, err := newAuditPublisher(ctx, cfg.Audit, infra, reg, log)
	if err != nil {
		return err
	}

	if err := seedAllowList(ctx, infra.origins, cfg.SeedAllowOrigins); err != nil {
		return fmt.Errorf("failed to seed allow list: %w", err)
	}

	allow, err := originlist.NewRefresher(infra.origins, models.ListAllow, originlist.NewSnapshot(),
		originlist.WithInterval(cfg.RefreshInterval), originlist.WithLogger(log), originlist.WithMetrics(m))
	if err != nil {
		return err
	}
	deny, err := originlist.NewRefresher(infra.origins, models.ListDeny, originlist.NewSnapshot(),
		originlist.WithInterval(cfg.RefreshInterval), originlist.WithLogger(log), originlist.WithMetrics(m))
	if err != nil {
		return err
	}
	sw := suspension.NewSwitch(suspension.WithSwitchLogger(log), suspension.WithSwitchMetrics(m))
	queries := admission.NewExpectedQueries()

	file, hash, err := policyconfig.Load(cfg.PolicyFile)
	if err != nil {
		return err
	}
	chains, err := policyconfig.Build(file, policyconfig.Deps{
		AllowOrigins: allow.Snapshot(),
		DenyOrigins:  deny.Snapshot(),
		Switch:       sw,
		Queries:      queries,
		Publisher:    pub,
		Logger:       log,
		Observers: []barrier.Observer{
			observability.NewLogObserver(log),
			observability.NewTracingObserver(),
			observability.NewMetricsObserver(m),
			observability.NewAuditObserver(log, pub),
		},
	})
	if err != nil {
		return fmt.Errorf("invalid policy file: %w", err)
	}
	log.Info("policy loaded",
		"policy_hash", hash,
		"deny", chains.Deny.Len(),
		"suspend", chains.Suspend.Len(),
		"admit", chains.Admit.Len(),
	)

	g, err := gate.New(chains.Deny, chains.Suspend, chains.Admit,
		gate.WithLogger(log), gate.WithMetrics(m), gate.WithAuditPublisher(pub))
	if err != nil {
		return err
	}

	service, err := admin.New(infra.origins, infra.flags,
		admin.WithLogger(log),
		admin.WithAuditPublisher(pub),
		admin.WithRefresher(allow),
		admin.WithRefresher(deny),
		admin.WithSwitch(sw),
		admin.WithEvaluator(g),
		admin.WithQueryRegistry(queries),
	)
	if err != nil {
		return err
	}

	validator, err := middleware.NewHMACValidator(cfg.JWTSigningKey, adminIssuer)
	if err != nil {
		return err
	}
	router := newRouter(handler.New(service, log), validator, reg, infra.health(pub), log)
	srv := httpserver.New(cfg.Addr, router, httpserver.WithLogger(log))

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return pub.Run(gctx) })
	group.Go(func() error { return allow.Run(gctx) })
	group.Go(func() error { return deny.Run(gctx) })
	group.Go(func() error { return sw.Sync(gctx, infra.flags, cfg.RefreshInterval) })
	if infra.pgOrigins != nil {
		group.Go(func() error { return infra.pgOrigins.StartCleanup(gctx, cleanupInterval) })
	}
	group.Go(func() error {
		log.Info("starting msgbarrier", "addr", cfg.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("msgbarrier stopped")
	return nil
}

// infra holds the optional backends. Each falls back to memory when its
// URL is not configured.
type infra struct {
	db        *sql.DB
	redis     *redisclient.Client
	origins   ports.OriginStore
	pgOrigins *originlist.PostgresStore
	flags     ports.FlagStore
	closers   []func() error
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}

	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		in.db = db
		in.closers = append(in.closers, db.Close)
		if _, err := db.ExecContext(ctx, originlist.Schema); err != nil {
			in.close(log)
			return nil, fmt.Errorf("create origin schema: %w", err)
		}
		in.pgOrigins = originlist.NewPostgres(db)
		in.origins = in.pgOrigins
		log.Info("origin lists stored in postgres")
	} else {
		in.origins = originlist.NewInMemoryStore()
		log.Info("origin lists kept in memory")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.close(log)
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.closers = append(in.closers, rc.Close)
		in.flags = suspensionstore.NewRedis(rc.Client)
		log.Info("suspension flag stored in redis")
	} else {
		in.flags = suspensionstore.NewInMemoryStore()
		log.Info("suspension flag kept in memory")
	}
	return in, nil
}

// health reports the first failing dependency.
func (in *infra) health(pub *publisher.Publisher) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if in.db != nil {
			if err := in.db.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if in.redis != nil {
			if err := in.redis.Health(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		if !pub.Healthy() {
			return errors.New("audit sink: circuit open")
		}
		return nil
	}
}

func (in *infra) close(log *slog.Logger) {
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil {
			log.Warn("failed to close backend", "error", err)
		}
	}
	in.closers = nil
}

// newAuditPublisher picks the audit sinks. Kafka is primary when brokers
// are configured, with Postgres (or memory) taking batches while Kafka
// is failing.
func newAuditPublisher(ctx context.Context, cfg config.AuditConfig, in *infra, reg prometheus.Registerer, log *slog.Logger) (*publisher.Publisher, error) {
	var local audit.Store = auditmemory.NewInMemoryStore()
	if in.db != nil {
		if _, err := in.db.ExecContext(ctx, auditpostgres.Schema); err != nil {
			return nil, fmt.Errorf("create audit schema: %w", err)
		}
		local = auditpostgres.New(in.db)
	}

	sampler := publisher.NewSampler(1)
	sampler.SetRate(string(audit.EventMessageAdmitted), cfg.AdmittedSampleRate)
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
		publisher.WithBufferSize(cfg.BufferSize),
		publisher.WithSampler(sampler),
		publisher.WithBreaker(circuit.New("audit_sink",
			circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2))),
	}

	if len(cfg.Brokers) == 0 {
		return publisher.New(local, opts...)
	}
	sink, err := kafkastore.New(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	in.closers = append(in.closers, func() error {
		sink.Close()
		return nil
	})
	if err := sink.EnsureTopic(ctx, auditPartitions, auditReplication); err != nil {
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	log.Info("audit events published to kafka", "topic", cfg.Topic)
	return publisher.New(sink, append(opts, publisher.WithFallback(local))...)
}

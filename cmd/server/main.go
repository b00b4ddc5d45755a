package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custos/internal/compliance/dashboard"
	"custos/internal/compliance/evaluator"
	"custos/internal/compliance/handler"
	"custos/internal/compliance/metrics"
	"custos/internal/compliance/propagator"
	"custos/internal/compliance/scheduler"
	storepostgres "custos/internal/compliance/store/postgres"
	"custos/internal/platform/config"
	"custos/internal/platform/httpserver"
	"custos/internal/platform/kafka"
	"custos/internal/platform/logger"
	"custos/internal/platform/postgres"
	platformredis "custos/internal/platform/redis"
	auditpublisher "custos/pkg/platform/audit/publisher"
	auditpostgres "custos/pkg/platform/audit/store/postgres"
	auditworker "custos/pkg/platform/audit/worker"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storepostgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	m := metrics.New()
	store := storepostgres.New(db)

	// Audit events land in the transactional outbox; the worker drains
	// them to Kafka when brokers are configured.
	outbox := auditpostgres.New(db)
	publisher := auditpublisher.NewPublisher(outbox, auditpublisher.WithLogger(log))
	defer publisher.Close()

	if producer != nil {
		worker := auditworker.New(outbox, producer, log)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit worker stopped", "error", err.Error())
			}
		}()
	}

	prop, err := propagator.New(
		store.Entities(),
		store.ControlAssignments(),
		store.Tasks(),
		store.TaskAssignments(),
		propagator.WithLogger(log),
		propagator.WithMetrics(m),
		propagator.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	eval, err := evaluator.New(
		store.Entities(),
		store.Frameworks(),
		store.ControlAssignments(),
		store.Gaps(),
		store.History(),
		prop,
		evaluator.WithLogger(log),
		evaluator.WithMetrics(m),
		evaluator.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	dashboardOpts := []dashboard.Option{
		dashboard.WithLogger(log),
		dashboard.WithMetrics(m),
	}
	if redisClient != nil {
		dashboardOpts = append(dashboardOpts,
			dashboard.WithCache(dashboard.NewRedisCache(redisClient), cfg.Redis.DashboardTTL))
	}
	dash, err := dashboard.New(
		store.Assignments(),
		eval,
		store.TaskAssignments(),
		dashboardOpts...,
	)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(
		store.Assignments(),
		eval,
		store.TaskAssignments(),
		cfg.Sweeps,
		scheduler.WithLogger(log),
		scheduler.WithMetrics(m),
		scheduler.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Wait()
	defer sched.Stop()

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	handler.New(eval, dash, prop, sched, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting custos", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

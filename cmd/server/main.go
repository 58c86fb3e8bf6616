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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"contactbook/internal/contact"
	"contactbook/internal/contact/handler"
	contactmetrics "contactbook/internal/contact/metrics"
	"contactbook/internal/contact/service"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/httpserver"
	"contactbook/internal/platform/logger"
	"contactbook/internal/platform/middleware"
	"contactbook/pkg/platform/audit/publisher"
	auditmemory "contactbook/pkg/platform/audit/store/memory"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/contact.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pubOpts []publisher.Option
	pubOpts = append(pubOpts, publisher.WithLogger(log))
	if cfg.AuditBuffer > 0 {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.AuditBuffer))
	}
	auditStore := auditmemory.NewInMemoryStore(auditmemory.WithMaxEvents(cfg.AuditRetention))
	auditPublisher := publisher.NewPublisher(auditStore, pubOpts...)
	defer auditPublisher.Close()

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(contactmetrics.New(prometheus.DefaultRegisterer)),
		service.WithAuditPublisher(auditPublisher),
	}
	if cfg.AtomicUpdates {
		svcOpts = append(svcOpts, service.WithAtomicUpdates())
	}
	svc := contact.NewService(svcOpts...)

	srv := httpserver.New(cfg.Addr, newRouter(cfg, log, svc, auditPublisher))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting contactbook", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down contactbook")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newRouter(cfg config.Server, log *slog.Logger, svc *contact.Service, auditReader handler.AuditReader) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		contact.NewHandler(svc, log, handler.WithAuditReader(auditReader)).Register(r)
	})
	return r
}

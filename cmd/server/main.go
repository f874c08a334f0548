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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"crm/internal/contact/events"
	"crm/internal/contact/handler"
	contactmetrics "crm/internal/contact/metrics"
	"crm/internal/contact/service"
	"crm/internal/platform/config"
	"crm/internal/platform/httpserver"
	"crm/internal/platform/kafka"
	"crm/internal/platform/logger"
	"crm/internal/platform/metrics"
	httptransport "crm/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "crm: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	contacts, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if err := contacts.Close(); err != nil {
			log.Error("close contact store", "error", err)
		}
	}()

	publisher, closePublisher, err := buildPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	svc := service.New(contacts,
		service.WithLogger(log),
		service.WithMetrics(contactmetrics.New(prometheus.DefaultRegisterer)),
		service.WithPublisher(publisher),
	)

	httpMetrics := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	contactHandler := handler.New(svc, log, httpMetrics, cfg.Server.RequestTimeout)
	router := httptransport.NewRouter(
		httptransport.Config{Port: cfg.Server.Port(), StaticDir: cfg.Server.StaticDir},
		log, httpMetrics, svc, contactHandler,
	)
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting crm server", "addr", cfg.Server.Addr, "store", cfg.Store.Driver, "events", cfg.Kafka.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down crm server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// buildPublisher returns a Kafka-backed publisher when brokers are configured
// and a no-op publisher otherwise.
func buildPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (service.EventPublisher, func(), error) {
	if !cfg.Enabled() {
		return events.Nop{}, func() {}, nil
	}

	client, err := kafka.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	log.Info("publishing contact events", "topic", cfg.Topic, "brokers", cfg.Brokers)

	publisher := events.NewPublisher(client.Client, cfg.Topic,
		events.WithLogger(log),
		events.WithMetrics(events.NewMetrics(prometheus.DefaultRegisterer)),
	)
	return publisher, client.Close, nil
}

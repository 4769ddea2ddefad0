package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackbirdmedia/lead-pipeline/internal/app"
	"github.com/blackbirdmedia/lead-pipeline/internal/config"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/handlers"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/middleware"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/logger"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/queue"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/stream"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.New("error").Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	deps := app.Dependencies{
		Config:   cfg,
		Logger:   log,
		Recorder: middleware.NewPrometheusRecorder(),
	}

	// The broker is optional; without it the queue target is left out.
	var broker handlers.BrokerChecker
	if cfg.AMQP.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQP.URL)
		if err != nil {
			log.Error("rabbitmq unavailable, queue target disabled", "error", err)
		} else {
			defer rabbitMQ.Close()
			deps.Publisher = rabbitMQ.Ch
			broker = rabbitMQ
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := stream.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("kafka unavailable, stream target disabled", "error", err)
		} else {
			defer producer.Close()
			deps.Producer = producer
		}
	}

	pipelines, err := app.Build(deps)
	if err != nil {
		log.Error("build pipelines", "error", err)
		os.Exit(1)
	}

	leadHandler := handlers.NewLeadHandler(pipelines.Resolve, log)
	healthHandler := handlers.NewHealthHandler(broker, pipelines.Validators, pipelines.Targets())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(leadHandler, healthHandler, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting lead pipeline", "addr", srv.Addr, "profiles", pipelines.Profiles())

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

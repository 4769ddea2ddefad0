package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/blackbirdmedia/lead-pipeline/internal/app"
	"github.com/blackbirdmedia/lead-pipeline/internal/config"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/handlers"
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

	deps := app.Dependencies{Config: cfg, Logger: log}
	if cfg.AMQP.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQP.URL)
		if err != nil {
			log.Error("rabbitmq unavailable, queue target disabled", "error", err)
		} else {
			defer rabbitMQ.Close()
			deps.Publisher = rabbitMQ.Ch
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

	origin := "*"
	if len(cfg.CORSOrigins) > 0 {
		origin = cfg.CORSOrigins[0]
	}
	gw := newGateway(handlers.NewLeadHandler(pipelines.Resolve, log), origin)
	lambda.Start(gw.Handle)
}

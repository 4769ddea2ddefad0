package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/handlers"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/middleware"
)

func newRouter(lead *handlers.LeadHandler, health *handlers.HealthHandler, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	r.Post("/submit", lead.Handle)
	r.Post("/submit/{profile}", lead.Handle)
	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

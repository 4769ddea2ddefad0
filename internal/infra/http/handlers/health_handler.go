package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// BrokerChecker reports broker connectivity; *queue.RabbitMQ satisfies it.
type BrokerChecker interface {
	Healthy() bool
}

type HealthHandler struct {
	Broker     BrokerChecker
	Validators map[string]bool
	Targets    map[string][]string
	StartTime  time.Time
}

type HealthResponse struct {
	Status       string              `json:"status"`
	Version      string              `json:"version"`
	Uptime       string              `json:"uptime"`
	Dependencies map[string]string   `json:"dependencies"`
	Targets      map[string][]string `json:"targets"`
}

// NewHealthHandler builds the handler. broker may be nil when no AMQP URL
// is configured.
func NewHealthHandler(broker BrokerChecker, validators map[string]bool, targets map[string][]string) *HealthHandler {
	return &HealthHandler{
		Broker:     broker,
		Validators: validators,
		Targets:    targets,
		StartTime:  time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.Broker != nil {
		if h.Broker.Healthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	for name, ok := range h.Validators {
		if ok {
			deps[name+"_validator"] = "configured"
		} else {
			deps[name+"_validator"] = "not configured"
		}
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
		Targets:      h.Targets,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/handlers"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/middleware"
)

// gateway adapts API Gateway proxy events to the lead handler.
type gateway struct {
	leads  *handlers.LeadHandler
	origin string
}

func newGateway(leads *handlers.LeadHandler, origin string) *gateway {
	return &gateway{leads: leads, origin: origin}
}

func (g *gateway) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := header(req.Headers, middleware.RequestIDHeader)
	if requestID == "" {
		requestID = req.RequestContext.RequestID
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	headers := map[string]string{
		"Content-Type":                 "application/json",
		middleware.RequestIDHeader:     requestID,
		"Access-Control-Allow-Origin":  g.origin,
		"Access-Control-Allow-Headers": "Content-Type, " + middleware.RequestIDHeader,
		"Access-Control-Allow-Methods": "POST, OPTIONS",
	}

	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return respond(http.StatusBadRequest, handlers.ErrorResponse{
				Error:   "Invalid JSON body provided.",
				Details: err.Error(),
			}, headers)
		}
		body = decoded
	}

	ctx = context.WithValue(ctx, chimw.RequestIDKey, requestID)
	status, payload := g.leads.Process(ctx, body, req.PathParameters["profile"])
	return respond(status, payload, headers)
}

func respond(status int, payload any, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(b),
	}, nil
}

// header looks a header up case-insensitively; API Gateway keeps the
// client's casing.
func header(h map[string]string, name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

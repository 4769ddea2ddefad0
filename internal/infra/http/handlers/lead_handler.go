package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
	"github.com/blackbirdmedia/lead-pipeline/internal/usecase"
)

// maxBodyBytes caps form submissions; real payloads are a few hundred bytes.
const maxBodyBytes = 64 << 10

type LeadSubmitter interface {
	Execute(ctx context.Context, input entity.LeadInput) (*usecase.SubmitLeadOutput, error)
}

// ResolveFunc returns the pipeline for a deployment profile.
type ResolveFunc func(profile string) (LeadSubmitter, bool)

type LeadHandler struct {
	resolve ResolveFunc
	logger  *slog.Logger
}

func NewLeadHandler(resolve ResolveFunc, logger *slog.Logger) *LeadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadHandler{resolve: resolve, logger: logger}
}

type LeadResponse struct {
	Message       string                    `json:"message"`
	Details       []entity.SubmissionResult `json:"details"`
	PhoneStripped bool                      `json:"phone_stripped"`
	Error         string                    `json:"error,omitempty"`
}

type ValidationFailedResponse struct {
	Error          string `json:"error"`
	ValidationType string `json:"validation_type"`
	EmailStatus    string `json:"email_status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handle serves POST /submit and POST /submit/{profile}.
func (h *LeadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid JSON body provided.",
			Details: err.Error(),
		})
		return
	}

	status, payload := h.Process(r.Context(), body, chi.URLParam(r, "profile"))
	writeJSON(w, status, payload)
}

// Process runs one submission and returns the status code and body. Both
// the HTTP server and the Lambda entrypoint go through it, and it always
// produces exactly one response.
func (h *LeadHandler) Process(ctx context.Context, body []byte, profile string) (status int, payload any) {
	logger := h.logger.With("request_id", chimw.GetReqID(ctx), "profile", profileName(profile))

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "lead submission panicked", "panic", rec)
			status, payload = http.StatusInternalServerError, ErrorResponse{
				Error:   "Critical Error: Lead could not be processed due to a function error.",
				Details: fmt.Sprint(rec),
			}
		}
	}()

	submitter, ok := h.resolve(profile)
	if !ok {
		logger.WarnContext(ctx, "unknown profile")
		return mapError(&usecase.DomainError{Code: usecase.CodeUnknownProfile, Message: "unknown profile"})
	}

	input, err := usecase.DecodeLeadInput(body)
	if err != nil {
		logger.WarnContext(ctx, "invalid lead request", "error", err)
		return mapError(err)
	}

	output, err := submitter.Execute(usecase.ContextWithLogger(ctx, logger), input)
	if err != nil {
		level := slog.LevelError
		if usecase.IsValidationError(err) || usecase.IsDomainError(err) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "lead rejected", "error", err)
		return mapError(err)
	}

	resp := LeadResponse{
		Message:       output.Message,
		Details:       output.Details,
		PhoneStripped: output.PhoneStripped,
	}
	if resp.Details == nil {
		resp.Details = []entity.SubmissionResult{}
	}
	if !output.Delivered {
		resp.Error = "No downstream service accepted the lead."
		return http.StatusBadGateway, resp
	}
	return http.StatusOK, resp
}

func mapError(err error) (int, any) {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ValidationFailedResponse{
			Error:          ve.Message,
			ValidationType: usecase.CodeEmailFailed,
			EmailStatus:    string(ve.Outcome.Verdict),
		}
	}

	var de *usecase.DomainError
	if errors.As(err, &de) {
		if de.Code == usecase.CodeUnknownProfile {
			return http.StatusNotFound, ErrorResponse{Error: "unknown profile"}
		}
		details := de.Code
		if de.Err != nil {
			details = de.Err.Error()
		}
		return http.StatusBadRequest, ErrorResponse{Error: de.Message, Details: details}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:   "Critical Error: Lead could not be processed due to a function error.",
		Details: err.Error(),
	}
}

func profileName(p string) string {
	if p == "" {
		return "default"
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

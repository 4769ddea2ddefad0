package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/handlers"
	"github.com/blackbirdmedia/lead-pipeline/internal/usecase"
)

type MockLeadSubmitter struct {
	mock.Mock
}

func (m *MockLeadSubmitter) Execute(ctx context.Context, input entity.LeadInput) (*usecase.SubmitLeadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SubmitLeadOutput), args.Error(1)
}

func resolverFor(profiles map[string]handlers.LeadSubmitter) handlers.ResolveFunc {
	return func(profile string) (handlers.LeadSubmitter, bool) {
		if profile == "" {
			profile = "default"
		}
		s, ok := profiles[profile]
		return s, ok
	}
}

func newRouter(h *handlers.LeadHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/submit", h.Handle)
	r.Post("/submit/{profile}", h.Handle)
	return r
}

func post(t *testing.T, router http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return rr, payload
}

func TestSubmitLeadSuccess(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, entity.LeadInput{Email: "a@b.com", Phone: "+15551234567"}).
		Return(&usecase.SubmitLeadOutput{
			Message: "Lead processed. Successes: SendGrid.",
			Details: []entity.SubmissionResult{
				{Target: "SendGrid", Status: entity.SubmissionSuccess},
			},
			Delivered: true,
		}, nil)

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	rr, payload := post(t, newRouter(h), "/submit", `{"email":"a@b.com","phone_number":"+15551234567"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Lead processed. Successes: SendGrid.", payload["message"])
	assert.Equal(t, false, payload["phone_stripped"])
	assert.NotContains(t, payload, "error")

	details := payload["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, map[string]any{"service": "SendGrid", "status": "success"}, details[0])
}

func TestSubmitLeadAllFailedIs502(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, mock.Anything).Return(&usecase.SubmitLeadOutput{
		Message: "Lead processed. Failures: SendGrid.",
		Details: []entity.SubmissionResult{
			{Target: "SendGrid", Status: entity.SubmissionFailed, Detail: "SendGrid: unexpected status 500"},
		},
	}, nil)

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	rr, payload := post(t, newRouter(h), "/submit", `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotEmpty(t, payload["error"])
	details := payload["details"].([]any)
	assert.Equal(t, "SendGrid: unexpected status 500", details[0].(map[string]any)["error"])
}

func TestSubmitLeadZeroTargetsIs502(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, mock.Anything).Return(&usecase.SubmitLeadOutput{
		Message: "Lead processed. No downstream services were eligible.",
	}, nil)

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	rr, payload := post(t, newRouter(h), "/submit", `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, []any{}, payload["details"])
}

func TestSubmitLeadEmailRejected(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.ValidationError{
		Field:   "email",
		Message: "Lead validation failed. Invalid email address.",
		Outcome: entity.ValidationOutcome{Verdict: entity.VerdictInvalid},
	})

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	rr, payload := post(t, newRouter(h), "/submit", `{"email":"bad@nowhere.invalid"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Lead validation failed. Invalid email address.", payload["error"])
	assert.Equal(t, "EMAIL_FAILED", payload["validation_type"])
	assert.Equal(t, "Invalid", payload["email_status"])
}

func TestSubmitLeadDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"missing email", `{"phone_number":"123"}`},
		{"non-string email", `{"email":7}`},
		{"trailing content", `{"email":"a@b.com"} this is not json`},
		{"two objects", `{"email":"a@b.com"}{"email":"x@y.com"}`},
		{"object phone", `{"email":"a@b.com","phone_number":{"cc":"1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := new(MockLeadSubmitter)
			h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
			rr, payload := post(t, newRouter(h), "/submit", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, payload["error"])
			assert.NotEmpty(t, payload["details"])
			submitter.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitLeadInternalError(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, mock.Anything).
		Return(nil, &usecase.TechnicalError{Code: usecase.CodeInternal, Message: "pipeline misconfigured", Err: errors.New("nil sender")})

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	rr, payload := post(t, newRouter(h), "/submit", `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "pipeline misconfigured", payload["details"])
}

func TestSubmitLeadPanicIs500(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("unexpected")
	})

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	rr, payload := post(t, newRouter(h), "/submit", `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "unexpected", payload["details"])
}

func TestSubmitLeadNamedProfile(t *testing.T) {
	def, nz := new(MockLeadSubmitter), new(MockLeadSubmitter)
	nz.On("Execute", mock.Anything, mock.Anything).Return(&usecase.SubmitLeadOutput{
		Message:   "Lead processed. Successes: Brevo.",
		Details:   []entity.SubmissionResult{{Target: "Brevo", Status: entity.SubmissionSuccess}},
		Delivered: true,
	}, nil)

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": def, "nz": nz}), nil)
	rr, _ := post(t, newRouter(h), "/submit/nz", `{"email":"a@b.com","telephone":"021123456"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	nz.AssertCalled(t, "Execute", mock.Anything, entity.LeadInput{Email: "a@b.com", Phone: "021123456"})
	def.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestSubmitLeadUnknownProfile(t *testing.T) {
	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{}), nil)
	rr, payload := post(t, newRouter(h), "/submit/mars", `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "unknown profile", payload["error"])
}

func TestProcessIsTransportIndependent(t *testing.T) {
	submitter := new(MockLeadSubmitter)
	submitter.On("Execute", mock.Anything, mock.Anything).Return(&usecase.SubmitLeadOutput{
		Message:       "Lead processed. Phone number was invalid and excluded. Successes: SendGrid.",
		Details:       []entity.SubmissionResult{{Target: "SendGrid", Status: entity.SubmissionSuccess}},
		PhoneStripped: true,
		Delivered:     true,
	}, nil)

	h := handlers.NewLeadHandler(resolverFor(map[string]handlers.LeadSubmitter{"default": submitter}), nil)
	status, payload := h.Process(context.Background(), []byte(`{"email":"a@b.com","phone":"555"}`), "")

	assert.Equal(t, http.StatusOK, status)
	resp, ok := payload.(handlers.LeadResponse)
	require.True(t, ok)
	assert.True(t, resp.PhoneStripped)
}

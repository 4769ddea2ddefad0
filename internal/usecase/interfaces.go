package usecase

import (
	"context"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

// EmailValidator calls an email verification API once.
// It returns entity.ErrNotConfigured when credentials are absent and an
// *entity.StatusError for non-2xx responses.
type EmailValidator interface {
	CheckEmail(ctx context.Context, email string) (*entity.EmailCheck, error)
}

// PhoneValidator calls a carrier lookup API once.
type PhoneValidator interface {
	CheckPhone(ctx context.Context, phone string) (*entity.PhoneCheck, error)
}

// ContactSender delivers a lead to one downstream service.
type ContactSender interface {
	Submit(ctx context.Context, lead entity.Lead) error
}

// Recorder receives pipeline metrics.
type Recorder interface {
	RecordValidation(field string, outcome entity.ValidationOutcome)
	RecordDispatch(result entity.SubmissionResult)
	RecordSubmission(delivered bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordValidation(string, entity.ValidationOutcome) {}
func (noopRecorder) RecordDispatch(entity.SubmissionResult)            {}
func (noopRecorder) RecordSubmission(bool)                             {}

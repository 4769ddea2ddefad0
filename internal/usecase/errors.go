package usecase

import (
	"errors"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const (
	CodeInvalidJSON    = "INVALID_JSON"
	CodeMissingEmail   = "MISSING_EMAIL"
	CodeEmailFailed    = "EMAIL_FAILED"
	CodeUnknownProfile = "UNKNOWN_PROFILE"
	CodeInternal       = "INTERNAL_ERROR"
)

// DomainError is a client-caused failure (bad body, unknown profile).
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ValidationError reports a lead rejected by the email admission policy.
type ValidationError struct {
	Field   string
	Message string
	Outcome entity.ValidationOutcome
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TechnicalError is a fault in the pipeline's own logic.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

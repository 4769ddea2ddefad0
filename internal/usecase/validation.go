package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

// leadRequest mirrors the form body. Phone arrives under several names
// depending on the landing page, and sometimes as a JSON number.
type leadRequest struct {
	Email       any `json:"email"`
	PhoneNumber any `json:"phone_number"`
	Phone       any `json:"phone"`
	Telephone   any `json:"telephone"`
	FirstName   any `json:"first_name"`
}

// DecodeLeadInput parses a raw request body into a LeadInput.
// It never performs I/O; every failure is a *DomainError.
func DecodeLeadInput(body []byte) (entity.LeadInput, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var req leadRequest
	if err := dec.Decode(&req); err != nil {
		return entity.LeadInput{}, &DomainError{
			Code:    CodeInvalidJSON,
			Message: "Invalid JSON body provided.",
			Err:     err,
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return entity.LeadInput{}, &DomainError{
			Code:    CodeInvalidJSON,
			Message: "Invalid JSON body provided.",
			Err:     errors.New("unexpected content after the JSON object"),
		}
	}

	email, ok := req.Email.(string)
	if req.Email != nil && !ok {
		return entity.LeadInput{}, &DomainError{
			Code:    CodeInvalidJSON,
			Message: "email must be a string",
		}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return entity.LeadInput{}, &DomainError{
			Code:    CodeMissingEmail,
			Message: "email is required",
		}
	}

	phone := ""
	for _, candidate := range []struct {
		field string
		value any
	}{
		{"phone_number", req.PhoneNumber},
		{"phone", req.Phone},
		{"telephone", req.Telephone},
	} {
		p, ok := scalarString(candidate.value)
		if !ok {
			return entity.LeadInput{}, &DomainError{
				Code:    CodeInvalidJSON,
				Message: candidate.field + " must be a string or number",
			}
		}
		if p != "" && phone == "" {
			phone = p
		}
	}

	firstName, ok := scalarString(req.FirstName)
	if !ok {
		return entity.LeadInput{}, &DomainError{
			Code:    CodeInvalidJSON,
			Message: "first_name must be a string",
		}
	}

	return entity.LeadInput{
		Email:     email,
		Phone:     phone,
		FirstName: firstName,
	}, nil
}

// scalarString reads a JSON string or number. Null and booleans read as
// absent; objects and arrays are rejected.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil, bool:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

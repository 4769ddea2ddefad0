package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by a validator or target whose credentials
// are absent.
var ErrNotConfigured = errors.New("integration not configured")

type Verdict string

const (
	VerdictValid              Verdict = "Valid"
	VerdictRisky              Verdict = "Risky"
	VerdictInvalid            Verdict = "Invalid"
	VerdictUnknown            Verdict = "Unknown"
	VerdictAPIError           Verdict = "API Error"
	VerdictNetworkError       Verdict = "Network Exception"
	VerdictCredentialsMissing Verdict = "Credentials Missing"
)

// Tag is the lower-case label embedded in downstream payloads.
func (v Verdict) Tag() string {
	switch v {
	case VerdictValid, VerdictRisky, VerdictInvalid, VerdictUnknown:
		return strings.ToLower(string(v))
	case VerdictCredentialsMissing:
		return "unverified"
	default:
		return "error"
	}
}

// ParseVerdict maps a provider verdict string onto a Verdict.
// Unrecognised values map to VerdictUnknown.
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "valid", "deliverable":
		return VerdictValid
	case "risky":
		return VerdictRisky
	case "invalid", "undeliverable":
		return VerdictInvalid
	default:
		return VerdictUnknown
	}
}

// ValidationOutcome is the admit/reject decision for one validated field.
type ValidationOutcome struct {
	Admitted bool     `json:"admitted"`
	Verdict  Verdict  `json:"verdict"`
	Score    *float64 `json:"score,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// EmailCheck is the normalised response of an email verification API.
type EmailCheck struct {
	Verdict     Verdict
	Score       *float64
	NoMXRecord  bool
	KnownBounce bool
}

// PhoneCheck is the normalised response of a carrier lookup API.
// Valid is nil when the provider could not decide.
type PhoneCheck struct {
	Valid   *bool
	Type    string
	Carrier string
	Country string
}

// StatusError reports a non-2xx response from an external API.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsStatusError reports whether err carries a non-2xx API response.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

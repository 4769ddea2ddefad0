package usecase_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
	"github.com/blackbirdmedia/lead-pipeline/internal/usecase"
)

func TestEmailPolicyEvaluate(t *testing.T) {
	policy := usecase.DefaultEmailPolicy()

	tests := []struct {
		name         string
		check        *entity.EmailCheck
		err          error
		wantAdmitted bool
		wantVerdict  entity.Verdict
	}{
		{
			name:         "valid verdict",
			check:        &entity.EmailCheck{Verdict: entity.VerdictValid, Score: ptr(0.97)},
			wantAdmitted: true,
			wantVerdict:  entity.VerdictValid,
		},
		{
			name:         "risky verdict is allowed",
			check:        &entity.EmailCheck{Verdict: entity.VerdictRisky, Score: ptr(0.30)},
			wantAdmitted: true,
			wantVerdict:  entity.VerdictRisky,
		},
		{
			name:         "invalid verdict with low score",
			check:        &entity.EmailCheck{Verdict: entity.VerdictInvalid, Score: ptr(0.10)},
			wantAdmitted: false,
			wantVerdict:  entity.VerdictInvalid,
		},
		{
			name:         "invalid verdict rescued by score",
			check:        &entity.EmailCheck{Verdict: entity.VerdictInvalid, Score: ptr(0.50)},
			wantAdmitted: true,
			wantVerdict:  entity.VerdictInvalid,
		},
		{
			name:         "no mx record is a hard block",
			check:        &entity.EmailCheck{Verdict: entity.VerdictValid, Score: ptr(0.99), NoMXRecord: true},
			wantAdmitted: false,
			wantVerdict:  entity.VerdictValid,
		},
		{
			name:         "known bounce is a hard block",
			check:        &entity.EmailCheck{Verdict: entity.VerdictRisky, KnownBounce: true},
			wantAdmitted: false,
			wantVerdict:  entity.VerdictRisky,
		},
		{
			name:         "unknown verdict without score",
			check:        &entity.EmailCheck{Verdict: entity.VerdictUnknown},
			wantAdmitted: true,
			wantVerdict:  entity.VerdictUnknown,
		},
		{
			name:         "credentials missing fails open",
			err:          entity.ErrNotConfigured,
			wantAdmitted: true,
			wantVerdict:  entity.VerdictCredentialsMissing,
		},
		{
			name:         "api error fails closed",
			err:          &entity.StatusError{Service: "SendGrid", StatusCode: 500},
			wantAdmitted: false,
			wantVerdict:  entity.VerdictAPIError,
		},
		{
			name:         "wrapped api error fails closed",
			err:          fmt.Errorf("lookup: %w", &entity.StatusError{Service: "TextMagic", StatusCode: 401}),
			wantAdmitted: false,
			wantVerdict:  entity.VerdictAPIError,
		},
		{
			name:         "network error fails closed",
			err:          errors.New("dial tcp: connection refused"),
			wantAdmitted: false,
			wantVerdict:  entity.VerdictNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := policy.Evaluate(tt.check, tt.err)
			assert.Equal(t, tt.wantAdmitted, out.Admitted)
			assert.Equal(t, tt.wantVerdict, out.Verdict)
			assert.NotEmpty(t, out.Reason)
		})
	}
}

func TestEmailPolicyZeroMinScoreDisablesScoreRule(t *testing.T) {
	policy := usecase.DefaultEmailPolicy()
	policy.MinScore = 0

	out := policy.Evaluate(&entity.EmailCheck{Verdict: entity.VerdictInvalid, Score: ptr(0.99)}, nil)
	assert.False(t, out.Admitted)
}

func TestEmailPolicyFailOpenOverrides(t *testing.T) {
	policy := usecase.DefaultEmailPolicy()
	policy.AdmitOnAPIError = true
	policy.AdmitOnNetworkError = true
	policy.AdmitWhenUnconfigured = false

	assert.True(t, policy.Evaluate(nil, &entity.StatusError{StatusCode: 503}).Admitted)
	assert.True(t, policy.Evaluate(nil, errors.New("timeout")).Admitted)
	assert.False(t, policy.Evaluate(nil, entity.ErrNotConfigured).Admitted)
}

func TestEmailPolicyScoreIsCarried(t *testing.T) {
	out := usecase.DefaultEmailPolicy().Evaluate(&entity.EmailCheck{Verdict: entity.VerdictValid, Score: ptr(0.8)}, nil)
	if assert.NotNil(t, out.Score) {
		assert.InDelta(t, 0.8, *out.Score, 1e-9)
	}
}

func TestPhonePolicyEvaluate(t *testing.T) {
	policy := usecase.DefaultPhonePolicy()

	tests := []struct {
		name         string
		check        *entity.PhoneCheck
		err          error
		wantAdmitted bool
		wantVerdict  entity.Verdict
	}{
		{"valid mobile", &entity.PhoneCheck{Valid: ptr(true), Type: "mobile"}, nil, true, entity.VerdictValid},
		{"valid mobile upper-case type", &entity.PhoneCheck{Valid: ptr(true), Type: "Mobile"}, nil, true, entity.VerdictValid},
		{"valid voip", &entity.PhoneCheck{Valid: ptr(true), Type: "voip"}, nil, true, entity.VerdictValid},
		{"valid landline", &entity.PhoneCheck{Valid: ptr(true), Type: "landline"}, nil, false, entity.VerdictInvalid},
		{"invalid number", &entity.PhoneCheck{Valid: ptr(false), Type: "mobile"}, nil, false, entity.VerdictInvalid},
		{"ambiguous validity", &entity.PhoneCheck{Type: "mobile"}, nil, true, entity.VerdictUnknown},
		{"unconfigured", nil, entity.ErrNotConfigured, true, entity.VerdictCredentialsMissing},
		{"api error", nil, &entity.StatusError{StatusCode: 404}, false, entity.VerdictAPIError},
		{"network error", nil, errors.New("i/o timeout"), false, entity.VerdictNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := policy.Evaluate(tt.check, tt.err)
			assert.Equal(t, tt.wantAdmitted, out.Admitted)
			assert.Equal(t, tt.wantVerdict, out.Verdict)
		})
	}
}

func TestPhonePolicyVoIPDisallowed(t *testing.T) {
	policy := usecase.DefaultPhonePolicy()
	policy.AllowVoIP = false

	out := policy.Evaluate(&entity.PhoneCheck{Valid: ptr(true), Type: "voip"}, nil)
	assert.False(t, out.Admitted)
}

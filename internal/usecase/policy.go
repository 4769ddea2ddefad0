package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

// EmailPolicy turns an email verification response into an admission
// decision. Missing credentials fail open, API and network errors fail
// closed unless configured otherwise.
type EmailPolicy struct {
	AdmitWhenUnconfigured bool
	AdmitOnAPIError       bool
	AdmitOnNetworkError   bool
	// HardBlock rejects leads with no mail-exchange record or a known
	// bounce history regardless of score or verdict.
	HardBlock bool
	// MinScore admits any lead scoring at or above it. Zero disables the
	// score rule.
	MinScore        float64
	AllowedVerdicts []entity.Verdict
}

func DefaultEmailPolicy() EmailPolicy {
	return EmailPolicy{
		AdmitWhenUnconfigured: true,
		HardBlock:             true,
		MinScore:              0.50,
		AllowedVerdicts:       []entity.Verdict{entity.VerdictValid, entity.VerdictRisky, entity.VerdictUnknown},
	}
}

func (p EmailPolicy) Evaluate(check *entity.EmailCheck, err error) entity.ValidationOutcome {
	if err != nil {
		return evaluateFailure(err, p.AdmitWhenUnconfigured, p.AdmitOnAPIError, p.AdmitOnNetworkError)
	}
	if check == nil {
		return entity.ValidationOutcome{
			Admitted: p.allows(entity.VerdictUnknown),
			Verdict:  entity.VerdictUnknown,
			Reason:   "empty verification response",
		}
	}

	out := entity.ValidationOutcome{Verdict: check.Verdict, Score: check.Score}

	if p.HardBlock {
		switch {
		case check.NoMXRecord:
			out.Reason = "domain has no mail-exchange record"
			return out
		case check.KnownBounce:
			out.Reason = "address has known bounces"
			return out
		}
	}

	if p.MinScore > 0 && check.Score != nil && *check.Score >= p.MinScore {
		out.Admitted = true
		out.Reason = fmt.Sprintf("score %.2f meets threshold %.2f", *check.Score, p.MinScore)
		return out
	}
	if p.allows(check.Verdict) {
		out.Admitted = true
		out.Reason = "verdict allowed"
		return out
	}

	out.Reason = "verdict " + string(check.Verdict) + " not allowed"
	return out
}

func (p EmailPolicy) allows(v entity.Verdict) bool {
	for _, allowed := range p.AllowedVerdicts {
		if allowed == v {
			return true
		}
	}
	return false
}

// PhonePolicy decides whether a carrier lookup keeps the phone number.
// A rejected phone is stripped from the lead, it never rejects the lead.
type PhonePolicy struct {
	AdmitWhenUnconfigured bool
	AdmitOnFailure        bool
	AllowVoIP             bool
	// AdmitAmbiguous keeps numbers whose validity the provider could not
	// determine.
	AdmitAmbiguous bool
}

func DefaultPhonePolicy() PhonePolicy {
	return PhonePolicy{
		AdmitWhenUnconfigured: true,
		AllowVoIP:             true,
		AdmitAmbiguous:        true,
	}
}

func (p PhonePolicy) Evaluate(check *entity.PhoneCheck, err error) entity.ValidationOutcome {
	if err != nil {
		return evaluateFailure(err, p.AdmitWhenUnconfigured, p.AdmitOnFailure, p.AdmitOnFailure)
	}
	if check == nil || check.Valid == nil {
		return entity.ValidationOutcome{
			Admitted: p.AdmitAmbiguous,
			Verdict:  entity.VerdictUnknown,
			Reason:   "carrier lookup was ambiguous",
		}
	}

	lineType := strings.ToLower(strings.TrimSpace(check.Type))
	if !*check.Valid {
		return entity.ValidationOutcome{Verdict: entity.VerdictInvalid, Reason: "number reported invalid"}
	}

	switch {
	case lineType == "mobile":
		return entity.ValidationOutcome{Admitted: true, Verdict: entity.VerdictValid}
	case lineType == "voip" && p.AllowVoIP:
		return entity.ValidationOutcome{Admitted: true, Verdict: entity.VerdictValid}
	default:
		return entity.ValidationOutcome{
			Verdict: entity.VerdictInvalid,
			Reason:  fmt.Sprintf("line type %q not accepted", lineType),
		}
	}
}

// vacuousPhoneOutcome is used when no phone was supplied.
func vacuousPhoneOutcome() entity.ValidationOutcome {
	return entity.ValidationOutcome{Admitted: true, Verdict: entity.VerdictUnknown, Reason: "no phone supplied"}
}

func evaluateFailure(err error, onUnconfigured, onAPIError, onNetworkError bool) entity.ValidationOutcome {
	switch {
	case errors.Is(err, entity.ErrNotConfigured):
		return entity.ValidationOutcome{
			Admitted: onUnconfigured,
			Verdict:  entity.VerdictCredentialsMissing,
			Reason:   "validator credentials missing",
		}
	case entity.IsStatusError(err):
		return entity.ValidationOutcome{
			Admitted: onAPIError,
			Verdict:  entity.VerdictAPIError,
			Reason:   err.Error(),
		}
	default:
		return entity.ValidationOutcome{
			Admitted: onNetworkError,
			Verdict:  entity.VerdictNetworkError,
			Reason:   err.Error(),
		}
	}
}

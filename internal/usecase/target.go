package usecase

import "github.com/blackbirdmedia/lead-pipeline/internal/entity"

// Validation carries both outcomes to admission predicates.
type Validation struct {
	Email entity.ValidationOutcome
	Phone entity.ValidationOutcome
}

// AdmissionPredicate decides whether a target takes part in the fan-out.
type AdmissionPredicate func(lead *entity.Lead, v Validation) bool

// Target is one downstream marketing service. The endpoint, auth and
// payload shape live in Sender.
type Target struct {
	Name   string
	Sender ContactSender
	Admit  AdmissionPredicate
}

func (t Target) admits(lead *entity.Lead, v Validation) bool {
	if t.Admit == nil {
		return true
	}
	return t.Admit(lead, v)
}

func Always() AdmissionPredicate {
	return func(*entity.Lead, Validation) bool { return true }
}

// MinScore admits leads whose email score is at least min. A lead without
// a score is skipped unless min is zero.
func MinScore(min float64) AdmissionPredicate {
	return func(lead *entity.Lead, _ Validation) bool {
		if min <= 0 {
			return true
		}
		score, ok := lead.Score()
		return ok && score >= min
	}
}

func RequirePhone() AdmissionPredicate {
	return func(lead *entity.Lead, _ Validation) bool {
		return lead.HasPhone()
	}
}

func EmailVerdictIn(verdicts ...entity.Verdict) AdmissionPredicate {
	return func(_ *entity.Lead, v Validation) bool {
		for _, verdict := range verdicts {
			if v.Email.Verdict == verdict {
				return true
			}
		}
		return false
	}
}

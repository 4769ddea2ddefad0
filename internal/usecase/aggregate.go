package usecase

import (
	"strings"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

// Summary is the aggregated view of a settled fan-out.
type Summary struct {
	Message   string
	Succeeded []string
	Failed    []string
	// Delivered is true when at least one target accepted the lead.
	// Partial success counts as success.
	Delivered bool
}

func Summarize(results []entity.SubmissionResult, phoneStripped bool) Summary {
	var s Summary
	for _, r := range results {
		if r.Succeeded() {
			s.Succeeded = append(s.Succeeded, r.Target)
		} else {
			s.Failed = append(s.Failed, r.Target)
		}
	}
	s.Delivered = len(s.Succeeded) > 0

	var b strings.Builder
	b.WriteString("Lead processed.")
	if phoneStripped {
		b.WriteString(" Phone number was invalid and excluded.")
	}
	if len(results) == 0 {
		b.WriteString(" No downstream services were eligible.")
	}
	if len(s.Succeeded) > 0 {
		b.WriteString(" Successes: " + strings.Join(s.Succeeded, ", ") + ".")
	}
	if len(s.Failed) > 0 {
		b.WriteString(" Failures: " + strings.Join(s.Failed, ", ") + ".")
	}
	s.Message = b.String()

	return s
}

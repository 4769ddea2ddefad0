package entity

import (
	"time"

	"github.com/google/uuid"
)

// LeadEvent is the broker message emitted for every lead that passed the
// email gate. Consumers own any retry or storage.
type LeadEvent struct {
	EventID     string            `json:"event_id"`
	Profile     string            `json:"profile"`
	Email       string            `json:"email"`
	Phone       *string           `json:"phone"`
	FirstName   string            `json:"first_name,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

func NewLeadEvent(lead Lead, profile string, at time.Time) LeadEvent {
	return LeadEvent{
		EventID:     uuid.NewString(),
		Profile:     profile,
		Email:       lead.Email,
		Phone:       lead.PhoneOrNil(),
		FirstName:   lead.FirstName,
		Tags:        lead.Tags,
		SubmittedAt: at.UTC(),
	}
}

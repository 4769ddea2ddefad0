package entity

import (
	"strconv"
)

// LeadInput is the decoded, untrusted form submission.
type LeadInput struct {
	Email     string
	Phone     string // "" means absent
	FirstName string
}

// Lead is the working record threaded through the pipeline.
// Phone is cleared when its validation outcome is not admitted and is
// never restored within the same request.
type Lead struct {
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	FirstName string            `json:"first_name,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`

	score *float64
}

// Tag keys written by the validators.
const (
	TagEmailVerdict = "email_verdict"
	TagEmailScore   = "email_score"
	TagPhoneType    = "phone_type"
)

func NewLead(in LeadInput) *Lead {
	return &Lead{
		Email:     in.Email,
		Phone:     in.Phone,
		FirstName: in.FirstName,
		Tags:      make(map[string]string),
	}
}

func (l *Lead) HasPhone() bool {
	return l.Phone != ""
}

// StripPhone removes the phone number before dispatch.
func (l *Lead) StripPhone() {
	l.Phone = ""
	delete(l.Tags, TagPhoneType)
}

// ApplyEmailOutcome records the email verdict and score as tags.
func (l *Lead) ApplyEmailOutcome(o ValidationOutcome) {
	l.Tags[TagEmailVerdict] = o.Verdict.Tag()
	if o.Score != nil {
		s := *o.Score
		l.score = &s
		l.Tags[TagEmailScore] = strconv.Itoa(ScorePercent(s))
	}
}

// Score returns the email score, if the validator produced one.
func (l *Lead) Score() (float64, bool) {
	if l.score == nil {
		return 0, false
	}
	return *l.score, true
}

// PhoneOrNil is used by payload builders that must send an explicit null
// for a stripped or missing phone.
func (l *Lead) PhoneOrNil() *string {
	if l.Phone == "" {
		return nil
	}
	p := l.Phone
	return &p
}

// ScorePercent converts a [0,1] score into the integer percentage sent to
// downstream custom attributes.
func ScorePercent(score float64) int {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return int(score*100 + 0.5)
}

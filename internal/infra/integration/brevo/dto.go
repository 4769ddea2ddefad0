package brevo

// createContactRequest is the body of POST /v3/contacts. With
// UpdateEnabled set, an existing contact is updated instead of failing.
type createContactRequest struct {
	Email         string         `json:"email"`
	Attributes    map[string]any `json:"attributes"`
	ListIDs       []int64        `json:"listIds,omitempty"`
	UpdateEnabled bool           `json:"updateEnabled"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Attribute names as configured in the Brevo account.
const (
	AttrSMS         = "SMS"
	AttrFirstName   = "FIRSTNAME"
	AttrLeadQuality = "LEAD_QUALITY"
	AttrEmailScore  = "EMAIL_SCORE"
)

package mailplatform

// profileRequest is the body of PUT /v2.0/Profiles.
type profileRequest struct {
	ListID              string      `json:"listid"`
	EmailAddress        string      `json:"email_address"`
	MobileNumber        *string     `json:"mobile_number"`
	MobilePrefix        string      `json:"mobile_prefix"`
	DataFields          []dataField `json:"data_fields"`
	Confirmed           bool        `json:"confirmed"`
	AddToAutoresponders bool        `json:"add_to_autoresponders"`
}

type dataField struct {
	FieldID string `json:"fieldid"`
	Value   string `json:"value"`
}

type ListConfig struct {
	ListID       string
	MobilePrefix string
	// ScoreFieldID receives the email score; empty skips it.
	ScoreFieldID string
}

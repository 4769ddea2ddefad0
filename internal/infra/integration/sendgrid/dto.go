package sendgrid

// upsertContactsRequest is the body of PUT /v3/marketing/contacts.
type upsertContactsRequest struct {
	ListIDs  []string  `json:"list_ids,omitempty"`
	Contacts []contact `json:"contacts"`
}

type contact struct {
	Email        string         `json:"email"`
	PhoneNumber  *string        `json:"phone_number"`
	FirstName    string         `json:"first_name,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// validateEmailRequest is the body of POST /v3/validations/email.
type validateEmailRequest struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

type validateEmailResponse struct {
	Result validationResult `json:"result"`
}

type validationResult struct {
	Email   string           `json:"email"`
	Verdict string           `json:"verdict"`
	Score   *float64         `json:"score"`
	Local   string           `json:"local"`
	Host    string           `json:"host"`
	Checks  validationChecks `json:"checks"`
}

type validationChecks struct {
	Domain struct {
		HasValidAddressSyntax        bool  `json:"has_valid_address_syntax"`
		HasMXOrARecord               *bool `json:"has_mx_or_a_record"`
		IsSuspectedDisposableAddress bool  `json:"is_suspected_disposable_address"`
	} `json:"domain"`
	LocalPart struct {
		IsSuspectedRoleAddress bool `json:"is_suspected_role_address"`
	} `json:"local_part"`
	Additional struct {
		HasKnownBounces     bool `json:"has_known_bounces"`
		HasSuspectedBounces bool `json:"has_suspected_bounces"`
	} `json:"additional"`
}

package simpletexting

// contactRequest is the body of POST /v2/api/contacts.
type contactRequest struct {
	ContactPhone string   `json:"contactPhone"`
	Email        string   `json:"email,omitempty"`
	FirstName    string   `json:"firstName,omitempty"`
	ListIDs      []string `json:"listIds,omitempty"`
}

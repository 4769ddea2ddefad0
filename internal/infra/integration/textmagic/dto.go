package textmagic

// emailLookupResponse is returned by GET /email-lookups/{email}.
type emailLookupResponse struct {
	Address        string `json:"address"`
	Status         string `json:"status"`
	Deliverability string `json:"deliverability"`
	Reason         string `json:"reason"`
	IsDisposable   bool   `json:"isDisposableAddress"`
}

// carrierLookupResponse is returned by GET /lookups/{phone}. Valid is null
// when the carrier could not be determined.
type carrierLookupResponse struct {
	Valid   *bool  `json:"valid"`
	Type    string `json:"type"`
	Carrier string `json:"carrier"`
	Country struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"country"`
}

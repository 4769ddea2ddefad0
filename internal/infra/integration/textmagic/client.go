package textmagic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const (
	DefaultBaseURL = "https://rest.textmagic.com/api/v2"
	ServiceName    = "TextMagic"
)

type Client struct {
	baseURL  string
	username string
	apiKey   string
	// country is appended to carrier lookups for numbers without a
	// leading "+".
	country string
	http    *http.Client
}

func NewClient(username, apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		apiKey:   apiKey,
		http:     httpClient,
	}
}

// WithCountry returns a copy of the client that hints carrier lookups
// with an ISO country code.
func (c *Client) WithCountry(country string) *Client {
	cp := *c
	cp.country = strings.ToUpper(strings.TrimSpace(country))
	return &cp
}

func (c *Client) Configured() bool { return c.username != "" && c.apiKey != "" }

func (c *Client) CheckEmail(ctx context.Context, email string) (*entity.EmailCheck, error) {
	var resp emailLookupResponse
	if err := c.get(ctx, "/email-lookups/"+url.PathEscape(email), nil, &resp); err != nil {
		return nil, err
	}

	return &entity.EmailCheck{
		Verdict:    entity.ParseVerdict(resp.Deliverability),
		NoMXRecord: strings.EqualFold(resp.Reason, "no_mx_record"),
	}, nil
}

func (c *Client) CheckPhone(ctx context.Context, phone string) (*entity.PhoneCheck, error) {
	var query url.Values
	if c.country != "" && !strings.HasPrefix(phone, "+") {
		query = url.Values{"country": {c.country}}
	}

	var resp carrierLookupResponse
	if err := c.get(ctx, "/lookups/"+url.PathEscape(phone), query, &resp); err != nil {
		return nil, err
	}

	return &entity.PhoneCheck{
		Valid:   resp.Valid,
		Type:    strings.ToLower(resp.Type),
		Carrier: resp.Carrier,
		Country: resp.Country.ID,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.Configured() {
		return entity.ErrNotConfigured
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("textmagic: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &entity.StatusError{Service: ServiceName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("textmagic: decode response: %w", err)
	}
	return nil
}

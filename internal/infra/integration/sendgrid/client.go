package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const (
	DefaultBaseURL = "https://api.sendgrid.com"
	ServiceName    = "SendGrid"
)

type Client struct {
	baseURL       string
	apiKey        string
	validationKey string
	http          *http.Client
}

// NewClient builds a SendGrid client. The Email Validation API needs its
// own key; pass "" to leave validation unconfigured.
func NewClient(apiKey, validationKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		validationKey: validationKey,
		http:          httpClient,
	}
}

func (c *Client) ContactsConfigured() bool   { return c.apiKey != "" }
func (c *Client) ValidationConfigured() bool { return c.validationKey != "" }

// UpsertContact creates or updates a marketing contact keyed by email.
func (c *Client) UpsertContact(ctx context.Context, input UpsertContactInput) error {
	if c.apiKey == "" {
		return entity.ErrNotConfigured
	}

	payload := upsertContactsRequest{
		ListIDs: input.ListIDs,
		Contacts: []contact{{
			Email:        input.Email,
			PhoneNumber:  input.Phone,
			FirstName:    input.FirstName,
			CustomFields: input.CustomFields,
		}},
	}

	// 202 with a job id; the import itself runs asynchronously.
	_, err := c.do(ctx, http.MethodPut, "/v3/marketing/contacts", c.apiKey, payload)
	return err
}

// CheckEmail calls the Email Validation API.
func (c *Client) CheckEmail(ctx context.Context, email string) (*entity.EmailCheck, error) {
	if c.validationKey == "" {
		return nil, entity.ErrNotConfigured
	}

	body, err := c.do(ctx, http.MethodPost, "/v3/validations/email", c.validationKey, validateEmailRequest{
		Email:  email,
		Source: "lead-form",
	})
	if err != nil {
		return nil, err
	}

	var resp validateEmailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sendgrid: decode validation response: %w", err)
	}

	r := resp.Result
	return &entity.EmailCheck{
		Verdict:     entity.ParseVerdict(r.Verdict),
		Score:       r.Score,
		NoMXRecord:  r.Checks.Domain.HasMXOrARecord != nil && !*r.Checks.Domain.HasMXOrARecord,
		KnownBounce: r.Checks.Additional.HasKnownBounces,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, key string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &entity.StatusError{Service: ServiceName, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

type UpsertContactInput struct {
	Email        string
	Phone        *string
	FirstName    string
	ListIDs      []string
	CustomFields map[string]any
}

// ContactSender adapts the client to a fan-out target for one set of lists.
type ContactSender struct {
	client *Client
	// scoreFieldID is the SendGrid custom field id receiving the email
	// score; empty skips it.
	scoreFieldID string
	listIDs      []string
}

func NewContactSender(client *Client, listIDs []string, scoreFieldID string) *ContactSender {
	return &ContactSender{client: client, listIDs: listIDs, scoreFieldID: scoreFieldID}
}

func (s *ContactSender) Submit(ctx context.Context, lead entity.Lead) error {
	input := UpsertContactInput{
		Email:     lead.Email,
		Phone:     lead.PhoneOrNil(),
		FirstName: lead.FirstName,
		ListIDs:   s.listIDs,
	}
	if s.scoreFieldID != "" {
		if raw, ok := lead.Tags[entity.TagEmailScore]; ok {
			if score, err := strconv.Atoi(raw); err == nil {
				input.CustomFields = map[string]any{s.scoreFieldID: score}
			}
		}
	}
	return s.client.UpsertContact(ctx, input)
}

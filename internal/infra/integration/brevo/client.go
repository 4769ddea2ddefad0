package brevo

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
	DefaultBaseURL = "https://api.brevo.com"
	ServiceName    = "Brevo"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: httpClient}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// upsertContact creates or updates the contact keyed by email.
func (c *Client) upsertContact(ctx context.Context, payload createContactRequest) error {
	if c.apiKey == "" {
		return entity.ErrNotConfigured
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("brevo: marshal contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/contacts", bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("brevo: request failed: %w", err)
	}
	defer resp.Body.Close()

	// 201 on create, 204 on update.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		detail := string(body)
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			detail = apiErr.Code + ": " + apiErr.Message
		}
		return &entity.StatusError{Service: ServiceName, StatusCode: resp.StatusCode, Body: detail}
	}
	return nil
}

// ContactSender adapts the client to a fan-out target for one set of lists.
type ContactSender struct {
	client  *Client
	listIDs []int64
}

func NewContactSender(client *Client, listIDs []int64) *ContactSender {
	return &ContactSender{client: client, listIDs: listIDs}
}

func (s *ContactSender) Submit(ctx context.Context, lead entity.Lead) error {
	attrs := map[string]any{
		AttrSMS: lead.PhoneOrNil(),
	}
	if lead.FirstName != "" {
		attrs[AttrFirstName] = lead.FirstName
	}
	if quality, ok := lead.Tags[entity.TagEmailVerdict]; ok {
		attrs[AttrLeadQuality] = quality
	}
	if raw, ok := lead.Tags[entity.TagEmailScore]; ok {
		if score, err := strconv.Atoi(raw); err == nil {
			attrs[AttrEmailScore] = score
		}
	}

	return s.client.upsertContact(ctx, createContactRequest{
		Email:         lead.Email,
		Attributes:    attrs,
		ListIDs:       s.listIDs,
		UpdateEnabled: true,
	})
}

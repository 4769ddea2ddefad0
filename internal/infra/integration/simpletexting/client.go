package simpletexting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const (
	DefaultBaseURL = "https://api-app2.simpletexting.com"
	ServiceName    = "SimpleTexting"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

func (c *Client) Configured() bool { return c.token != "" }

// upsertContact creates the contact or updates the one with the same phone.
func (c *Client) upsertContact(ctx context.Context, payload contactRequest) error {
	if c.token == "" {
		return entity.ErrNotConfigured
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("simpletexting: marshal contact: %w", err)
	}

	q := url.Values{}
	q.Set("upsert", "true")
	q.Set("listsReplacement", "false")
	endpoint := c.baseURL + "/v2/api/contacts?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("simpletexting: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &entity.StatusError{Service: ServiceName, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

type ContactSender struct {
	client  *Client
	listIDs []string
}

func NewContactSender(client *Client, listIDs []string) *ContactSender {
	return &ContactSender{client: client, listIDs: listIDs}
}

// Submit requires a phone; the fan-out only admits SimpleTexting for leads
// that kept theirs.
func (s *ContactSender) Submit(ctx context.Context, lead entity.Lead) error {
	if !lead.HasPhone() {
		return fmt.Errorf("simpletexting: lead has no phone")
	}
	return s.client.upsertContact(ctx, contactRequest{
		ContactPhone: lead.Phone,
		Email:        lead.Email,
		FirstName:    lead.FirstName,
		ListIDs:      s.listIDs,
	})
}

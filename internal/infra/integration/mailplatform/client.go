// Package mailplatform talks to the MailMailMail profile API, referred to
// in campaigns as the "Marketing Platform".
package mailplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const (
	DefaultBaseURL = "https://api.mailmailmail.net/v2.0"
	ServiceName    = "MarketingPlatform"
)

type Client struct {
	baseURL  string
	username string
	token    string
	http     *http.Client
}

func NewClient(username, token, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, username: username, token: token, http: httpClient}
}

func (c *Client) Configured() bool { return c.username != "" && c.token != "" }

func (c *Client) putProfile(ctx context.Context, payload profileRequest) error {
	if !c.Configured() {
		return entity.ErrNotConfigured
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailplatform: marshal profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/Profiles", bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Apiusername", c.username)
	req.Header.Set("Apitoken", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mailplatform: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &entity.StatusError{Service: ServiceName, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

type ProfileSender struct {
	client *Client
	list   ListConfig
}

func NewProfileSender(client *Client, list ListConfig) *ProfileSender {
	return &ProfileSender{client: client, list: list}
}

func (s *ProfileSender) Submit(ctx context.Context, lead entity.Lead) error {
	fields := []dataField{}
	if s.list.ScoreFieldID != "" {
		if score, ok := lead.Tags[entity.TagEmailScore]; ok {
			fields = append(fields, dataField{FieldID: s.list.ScoreFieldID, Value: score})
		}
	}

	return s.client.putProfile(ctx, profileRequest{
		ListID:              s.list.ListID,
		EmailAddress:        lead.Email,
		MobileNumber:        nationalNumber(lead.PhoneOrNil(), s.list.MobilePrefix),
		MobilePrefix:        s.list.MobilePrefix,
		DataFields:          fields,
		Confirmed:           false,
		AddToAutoresponders: false,
	})
}

// nationalNumber drops the "+<prefix>" part, since the API takes the
// country prefix separately.
func nationalNumber(phone *string, prefix string) *string {
	if phone == nil || prefix == "" {
		return phone
	}
	n := strings.TrimPrefix(*phone, "+"+prefix)
	return &n
}

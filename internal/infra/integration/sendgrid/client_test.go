package sendgrid_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/integration/sendgrid"
)

func TestContactSenderUpsertsContact(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v3/marketing/contacts", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"job_id":"abc"}`))
	}))
	defer server.Close()

	client := sendgrid.NewClient("sg-key", "", server.URL, server.Client())
	sender := sendgrid.NewContactSender(client, []string{"list-1"}, "e1_N")

	lead := entity.NewLead(entity.LeadInput{Email: "a@b.com", Phone: "+15551234567", FirstName: "Ana"})
	score := 0.91
	lead.ApplyEmailOutcome(entity.ValidationOutcome{Admitted: true, Verdict: entity.VerdictValid, Score: &score})

	require.NoError(t, sender.Submit(context.Background(), *lead))

	assert.Equal(t, []any{"list-1"}, got["list_ids"])
	contacts := got["contacts"].([]any)
	require.Len(t, contacts, 1)
	c := contacts[0].(map[string]any)
	assert.Equal(t, "a@b.com", c["email"])
	assert.Equal(t, "+15551234567", c["phone_number"])
	assert.Equal(t, "Ana", c["first_name"])
	assert.Equal(t, map[string]any{"e1_N": float64(91)}, c["custom_fields"])
}

func TestContactSenderSendsNullPhoneWhenStripped(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contacts []map[string]json.RawMessage `json:"contacts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body.Contacts[0]
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := sendgrid.NewContactSender(sendgrid.NewClient("sg-key", "", server.URL, nil), nil, "")
	lead := entity.NewLead(entity.LeadInput{Email: "a@b.com", Phone: "+15550000000"})
	lead.StripPhone()

	require.NoError(t, sender.Submit(context.Background(), *lead))
	assert.JSONEq(t, "null", string(raw["phone_number"]))
}

func TestUpsertContactNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"field":"email","message":"invalid"}]}`))
	}))
	defer server.Close()

	client := sendgrid.NewClient("sg-key", "", server.URL, nil)
	err := client.UpsertContact(context.Background(), sendgrid.UpsertContactInput{Email: "a@b.com"})

	var se *entity.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, sendgrid.ServiceName, se.Service)
}

func TestUpsertContactNotConfigured(t *testing.T) {
	client := sendgrid.NewClient("", "", "http://127.0.0.1:1", nil)
	err := client.UpsertContact(context.Background(), sendgrid.UpsertContactInput{Email: "a@b.com"})
	assert.ErrorIs(t, err, entity.ErrNotConfigured)
}

func TestCheckEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/validations/email", r.URL.Path)
		assert.Equal(t, "Bearer val-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req["email"])

		w.Write([]byte(`{"result":{"email":"a@b.com","verdict":"Risky","score":0.42,
			"checks":{"domain":{"has_mx_or_a_record":false},"additional":{"has_known_bounces":true}}}}`))
	}))
	defer server.Close()

	client := sendgrid.NewClient("sg-key", "val-key", server.URL, nil)
	check, err := client.CheckEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	assert.Equal(t, entity.VerdictRisky, check.Verdict)
	require.NotNil(t, check.Score)
	assert.InDelta(t, 0.42, *check.Score, 1e-9)
	assert.True(t, check.NoMXRecord)
	assert.True(t, check.KnownBounce)
}

func TestCheckEmailMissingMXFieldIsNotABlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"verdict":"Valid","score":0.99}}`))
	}))
	defer server.Close()

	check, err := sendgrid.NewClient("", "val-key", server.URL, nil).CheckEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, check.NoMXRecord)
	assert.Equal(t, entity.VerdictValid, check.Verdict)
}

func TestCheckEmailNotConfigured(t *testing.T) {
	client := sendgrid.NewClient("sg-key", "", "http://127.0.0.1:1", nil)
	assert.True(t, client.ContactsConfigured())
	assert.False(t, client.ValidationConfigured())

	_, err := client.CheckEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, entity.ErrNotConfigured)
}

func TestCheckEmailBadJSONIsNotAStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	_, err := sendgrid.NewClient("", "val-key", server.URL, nil).CheckEmail(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.False(t, entity.IsStatusError(err))
}

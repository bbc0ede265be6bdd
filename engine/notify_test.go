package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/utils"
)

func testPayload() *NotificationPayload {
	return &NotificationPayload{
		AlertID:     uuid.New(),
		AlertName:   "High CPU",
		Severity:    "critical",
		Value:       97.5,
		Threshold:   90,
		Message:     "High CPU: cpu_usage is 97.5000 (gt 90.0000)",
		TriggeredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookChannelSend(t *testing.T) {
	var received *NotificationPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "token", r.Header.Get("X-Api-Key"))

		var payload NotificationPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received = &payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := newWebhookChannel("ops-hook", map[string]interface{}{
		"url":     server.URL,
		"headers": map[string]interface{}{"X-Api-Key": "token"},
	}, server.Client())
	assert.NoError(t, err)
	assert.Equal(t, "ops-hook", channel.Name())

	assert.NoError(t, channel.Send(context.Background(), testPayload()))
	assert.NotNil(t, received)
	assert.Equal(t, "High CPU", received.AlertName)
	assert.Equal(t, 97.5, received.Value)
}

func TestWebhookChannelSignsWithSecret(t *testing.T) {
	var body []byte
	var timestamp, signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		timestamp = r.Header.Get("X-Timestamp")
		signature = r.Header.Get("X-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := newWebhookChannel("signed-hook", map[string]interface{}{
		"url":    server.URL + "/hooks/alerts",
		"secret": "s3cret",
	}, server.Client())
	assert.NoError(t, err)
	assert.NoError(t, channel.Send(context.Background(), testPayload()))

	assert.NotEmpty(t, timestamp, "signed deliveries carry a timestamp")
	assert.Len(t, signature, 64)

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	assert.NoError(t, err)
	expected := utils.ComputeHMACSHA256("s3cret",
		utils.BuildStringToSign(http.MethodPost, "/hooks/alerts", ts, utils.HashBodySHA256(body)))
	assert.True(t, utils.SecureCompare(expected, signature))
}

func TestWebhookChannelRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	channel, err := newWebhookChannel("hook", map[string]interface{}{"url": server.URL}, server.Client())
	assert.NoError(t, err)
	assert.Error(t, channel.Send(context.Background(), testPayload()))
}

func TestWebhookChannelRequiresURL(t *testing.T) {
	_, err := newWebhookChannel("hook", map[string]interface{}{}, http.DefaultClient)
	assert.Error(t, err)
}

func TestChatChannelFormatsAttachment(t *testing.T) {
	var decoded map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&decoded))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := newChatChannel("chat", map[string]interface{}{"webhook_url": server.URL}, server.Client())
	assert.NoError(t, err)
	assert.NoError(t, channel.Send(context.Background(), testPayload()))

	attachments, ok := decoded["attachments"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, attachments, 1)
}

func TestSeverityColor(t *testing.T) {
	assert.NotEqual(t, severityColor("critical"), severityColor("low"))
	assert.Equal(t, severityColor("unknown"), severityColor("bogus"))
}

func TestConfigString(t *testing.T) {
	config := map[string]interface{}{"url": "https://example.com", "count": 3, "nothing": nil}

	assert.Equal(t, "https://example.com", configString(config, "url"))
	assert.Equal(t, "3", configString(config, "count"))
	assert.Equal(t, "", configString(config, "nothing"))
	assert.Equal(t, "", configString(config, "missing"))
}

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/infra/produce"
	"github.com/tnqbao/gau-observability/utils"
)

// NotificationPayload is the one contract every channel transport receives.
type NotificationPayload struct {
	AlertID     uuid.UUID `json:"alert_id"`
	AlertName   string    `json:"alert_name"`
	Severity    string    `json:"severity"`
	Value       float64   `json:"value"`
	Threshold   float64   `json:"threshold"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Channel is one notification transport. Implementations must be safe to call
// from the evaluator loop and should honor the context deadline.
type Channel interface {
	Name() string
	Send(ctx context.Context, payload *NotificationPayload) error
}

// Notifier fans a trigger out to every enabled channel of an alert. Channel
// failures are isolated: one transport failing never stops the others.
type Notifier struct {
	logger *infra.LoggerClient
	email  *produce.EmailService
	client *http.Client
}

func NewNotifier(logger *infra.LoggerClient, email *produce.EmailService) *Notifier {
	return &Notifier{
		logger: logger,
		email:  email,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Dispatch sends the payload to every enabled channel and returns the names of
// the channels that succeeded plus the last error observed.
func (n *Notifier) Dispatch(ctx context.Context, channels []entity.NotificationChannel, payload *NotificationPayload) ([]string, error) {
	var succeeded []string
	var lastErr error

	for i := range channels {
		spec := &channels[i]
		if !spec.Enabled {
			continue
		}

		channel, err := n.buildChannel(spec)
		if err != nil {
			n.logger.ErrorWithContextf(ctx, err, "[Notifier] Channel %s rejected: %v", spec.Name, err)
			lastErr = err
			continue
		}

		if err := channel.Send(ctx, payload); err != nil {
			n.logger.ErrorWithContextf(ctx, err, "[Notifier] Channel %s failed: %v", spec.Name, err)
			lastErr = err
			continue
		}
		succeeded = append(succeeded, spec.Name)
	}

	return succeeded, lastErr
}

// buildChannel maps a stored channel definition onto its transport. The type
// set is closed; anything else is rejected.
func (n *Notifier) buildChannel(spec *entity.NotificationChannel) (Channel, error) {
	config := make(map[string]interface{})
	if len(spec.Config) > 0 {
		if err := json.Unmarshal(spec.Config, &config); err != nil {
			return nil, fmt.Errorf("invalid config for channel %s: %w", spec.Name, err)
		}
	}

	switch spec.Type {
	case entity.ChannelTypeLog:
		return &logChannel{name: spec.Name, logger: n.logger}, nil
	case entity.ChannelTypeWebhook:
		return newWebhookChannel(spec.Name, config, n.client)
	case entity.ChannelTypeChat:
		return newChatChannel(spec.Name, config, n.client)
	case entity.ChannelTypeEmail:
		return newEmailChannel(spec.Name, config, n.email)
	case entity.ChannelTypePager:
		return newPagerChannel(spec.Name, config, n.client)
	default:
		return nil, fmt.Errorf("unknown channel type %q", spec.Type)
	}
}

type logChannel struct {
	name   string
	logger *infra.LoggerClient
}

func (c *logChannel) Name() string { return c.name }

func (c *logChannel) Send(ctx context.Context, payload *NotificationPayload) error {
	c.logger.WarningWithContextf(ctx, "[Alert] %s (%s): value %.4f crossed threshold %.4f — %s",
		payload.AlertName, payload.Severity, payload.Value, payload.Threshold, payload.Message)
	return nil
}

type webhookChannel struct {
	name    string
	url     string
	method  string
	headers map[string]string
	secret  string
	client  *http.Client
	timeout time.Duration
}

func newWebhookChannel(name string, config map[string]interface{}, client *http.Client) (*webhookChannel, error) {
	url := configString(config, "url")
	if url == "" {
		return nil, fmt.Errorf("webhook channel %s has no url", name)
	}

	method := configString(config, "method")
	if method == "" {
		method = http.MethodPost
	}

	headers := make(map[string]string)
	if raw, ok := config["headers"].(map[string]interface{}); ok {
		for k, v := range raw {
			headers[k] = toString(v)
		}
	}

	timeout := 10 * time.Second
	if seconds, ok := toFloat(config["timeout_seconds"]); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &webhookChannel{
		name:    name,
		url:     url,
		method:  method,
		headers: headers,
		secret:  configString(config, "secret"),
		client:  client,
		timeout: timeout,
	}, nil
}

func (c *webhookChannel) Name() string { return c.name }

func (c *webhookChannel) Send(ctx context.Context, payload *NotificationPayload) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	// Receivers configured with a shared secret can verify the delivery.
	if c.secret != "" {
		timestamp := time.Now().Unix()
		stringToSign := utils.BuildStringToSign(c.method, req.URL.Path, timestamp, utils.HashBodySHA256(body))
		req.Header.Set("X-Timestamp", strconv.FormatInt(timestamp, 10))
		req.Header.Set("X-Signature", utils.ComputeHMACSHA256(c.secret, stringToSign))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type chatChannel struct {
	name       string
	webhookURL string
	client     *http.Client
}

func newChatChannel(name string, config map[string]interface{}, client *http.Client) (*chatChannel, error) {
	url := configString(config, "webhook_url")
	if url == "" {
		return nil, fmt.Errorf("chat channel %s has no webhook_url", name)
	}
	return &chatChannel{name: name, webhookURL: url, client: client}, nil
}

func (c *chatChannel) Name() string { return c.name }

func (c *chatChannel) Send(ctx context.Context, payload *NotificationPayload) error {
	attachment := map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"title": fmt.Sprintf("Alert: %s", payload.AlertName),
				"text":  payload.Message,
				"color": severityColor(payload.Severity),
				"fields": []map[string]interface{}{
					{"title": "Value", "value": fmt.Sprintf("%.4f", payload.Value), "short": true},
					{"title": "Threshold", "value": fmt.Sprintf("%.4f", payload.Threshold), "short": true},
					{"title": "Severity", "value": payload.Severity, "short": true},
				},
			},
		},
	}

	body, err := json.Marshal(attachment)
	if err != nil {
		return fmt.Errorf("failed to marshal chat attachment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func severityColor(severity string) string {
	switch severity {
	case "critical":
		return "#d63031"
	case "high":
		return "#e17055"
	case "medium":
		return "#fdcb6e"
	default:
		return "#74b9ff"
	}
}

type emailChannel struct {
	name      string
	recipient string
	email     *produce.EmailService
}

func newEmailChannel(name string, config map[string]interface{}, email *produce.EmailService) (*emailChannel, error) {
	recipient := configString(config, "recipient")
	if recipient == "" {
		return nil, fmt.Errorf("email channel %s has no recipient", name)
	}
	if email == nil {
		return nil, fmt.Errorf("email channel %s: email producer not configured", name)
	}
	return &emailChannel{name: name, recipient: recipient, email: email}, nil
}

func (c *emailChannel) Name() string { return c.name }

func (c *emailChannel) Send(ctx context.Context, payload *NotificationPayload) error {
	subject := fmt.Sprintf("[%s] Alert triggered: %s", payload.Severity, payload.AlertName)
	return c.email.SendAlertEmail(ctx, c.recipient, subject, payload.Message)
}

type pagerChannel struct {
	name       string
	endpoint   string
	routingKey string
	client     *http.Client
}

func newPagerChannel(name string, config map[string]interface{}, client *http.Client) (*pagerChannel, error) {
	endpoint := configString(config, "endpoint")
	if endpoint == "" {
		return nil, fmt.Errorf("pager channel %s has no endpoint", name)
	}
	routingKey := configString(config, "routing_key")
	if routingKey == "" {
		return nil, fmt.Errorf("pager channel %s has no routing_key", name)
	}
	return &pagerChannel{name: name, endpoint: endpoint, routingKey: routingKey, client: client}, nil
}

func (c *pagerChannel) Name() string { return c.name }

func (c *pagerChannel) Send(ctx context.Context, payload *NotificationPayload) error {
	event := map[string]interface{}{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    payload.AlertID.String(),
		"payload": map[string]interface{}{
			"summary":   payload.Message,
			"severity":  payload.Severity,
			"timestamp": payload.TriggeredAt.Format(time.RFC3339),
			"custom_details": map[string]interface{}{
				"value":     payload.Value,
				"threshold": payload.Threshold,
			},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pager event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build pager request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pager call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("pager returned status %d", resp.StatusCode)
	}
	return nil
}

func configString(config map[string]interface{}, key string) string {
	if v, ok := config[key]; ok && v != nil {
		return toString(v)
	}
	return ""
}

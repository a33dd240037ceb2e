package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultWhatsAppFrom = "whatsapp:+14155238886"
	twilioAPIBase       = "https://api.twilio.com/2010-04-01"
	whatsAppPrefix      = "whatsapp:"
)

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// TwilioSender delivers WhatsApp messages through the Twilio Messages API.
type TwilioSender struct {
	cfg        TwilioConfig
	baseURL    string
	httpClient *http.Client
}

func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	if cfg.FromNumber == "" {
		cfg.FromNumber = DefaultWhatsAppFrom
	}
	if !strings.HasPrefix(cfg.FromNumber, whatsAppPrefix) {
		cfg.FromNumber = whatsAppPrefix + cfg.FromNumber
	}
	return &TwilioSender{
		cfg:        cfg,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TwilioSender) SendWhatsApp(ctx context.Context, to, msg string) (SendResult, error) {
	if t.cfg.AccountSID == "" || t.cfg.AuthToken == "" {
		return SendResult{}, ErrNotConfigured
	}
	if !strings.HasPrefix(to, whatsAppPrefix) {
		to = whatsAppPrefix + to
	}

	apiURL := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.cfg.AccountSID)

	formData := url.Values{}
	formData.Set("To", to)
	formData.Set("From", t.cfg.FromNumber)
	formData.Set("Body", msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return SendResult{}, fmt.Errorf("twilio error %s: %s", resp.Status, string(respBody))
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	_ = json.Unmarshal(respBody, &parsed)
	if parsed.SID == "" {
		parsed.SID = fmt.Sprintf("twilio-%d", time.Now().UnixNano())
	}

	return SendResult{MessageID: parsed.SID, SentAt: time.Now()}, nil
}

// Package sms sends text messages through the Twilio Messages REST API.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com"

var (
	ErrCredentialsRequired = errors.New("sms: twilio account sid and auth token are required")
	ErrFromRequired        = errors.New("sms: sender number is required")
	ErrRecipientRequired   = errors.New("sms: recipient is required")
)

// Sender sends one SMS and returns the provider message reference.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides the API host, mostly for tests.
	BaseURL string
	Timeout time.Duration
}

// APIError is a non-2xx answer from Twilio.
type APIError struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sms: twilio status %d code %d: %s", e.Status, e.Code, e.Message)
}

type Twilio struct {
	cfg    TwilioConfig
	client *http.Client
}

func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, ErrCredentialsRequired
	}
	if cfg.From == "" {
		return nil, ErrFromRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Twilio{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (t *Twilio) Send(ctx context.Context, to, body string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", ErrRecipientRequired
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.cfg.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(t.cfg.BaseURL, "/"), url.PathEscape(t.cfg.AccountSID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms: twilio request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("sms: twilio read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
		return "", apiErr
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("sms: twilio decode: %w", err)
	}

	return out.SID, nil
}

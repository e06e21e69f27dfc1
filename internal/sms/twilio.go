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

	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Config controls how the Twilio client behaves.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the Twilio Messages endpoint.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// Result reports the outcome of a send attempt.
type Result struct {
	Success   bool
	SID       string
	Status    string
	ErrorCode int
	Message   string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("sms: Twilio account SID and auth token are required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type messageResponse struct {
	Sid       string `json:"sid"`
	Status    string `json:"status"`
	ErrorCode int    `json:"code"`
	Message   string `json:"message"`
}

// Send delivers an SMS. An empty from falls back to the configured
// default sender.
func (c *Client) Send(ctx context.Context, to, body, from string) (*Result, error) {
	sender := from
	if sender == "" {
		sender = c.fromNumber
	}
	if sender == "" {
		return nil, errors.New("sms: no sender phone number provided or configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", sender)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sms: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms: send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("sms: read response: %w", err)
	}

	var msg messageResponse
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("sms: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("twilio send rejected",
			"status_code", resp.StatusCode,
			"error_code", msg.ErrorCode,
			"message", msg.Message,
		)
		return &Result{
			Success:   false,
			ErrorCode: msg.ErrorCode,
			Message:   msg.Message,
		}, fmt.Errorf("sms: twilio error %d: %s", msg.ErrorCode, msg.Message)
	}

	return &Result{
		Success: true,
		SID:     msg.Sid,
		Status:  msg.Status,
	}, nil
}

// SendSMS satisfies the notify.SMSSender interface using the default sender.
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	_, err := c.Send(ctx, to, body, "")
	return err
}

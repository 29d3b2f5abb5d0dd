package emailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/secret"
	"github.com/ignite/newsletter/internal/service/sending"
)

var _ sending.Dispatcher = (*Client)(nil)

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives the latency and outcome of every Send.
type Observer interface {
	ObserveDispatch(d time.Duration, err error)
}

// emailContent is the provider's wire format. Exactly these four keys are sent.
type emailContent struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

// Client is safe for concurrent use; the underlying *http.Client pools
// connections across calls.
type Client struct {
	baseURL    string
	apiKey     secret.String
	sender     domain.SubscriberEmail
	timeout    time.Duration
	httpClient HTTPDoer
	observer   Observer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPDoer replaces the default *http.Client. The configured timeout is
// still enforced through the request context.
func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithObserver reports every Send to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a client that posts to baseURL, authenticating with
// apiKey and sending as sender. Each request is bounded by timeout.
func NewClient(apiKey secret.String, sender domain.SubscriberEmail, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		sender:     sender,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sender returns the configured from address.
func (c *Client) Sender() domain.SubscriberEmail { return c.sender }

// headers is the only place the API key is exposed.
func (c *Client) headers() (http.Header, error) {
	auth := "Bearer " + c.apiKey.Expose()
	if !httpguts.ValidHeaderFieldValue(auth) {
		return nil, fmt.Errorf("%w: Authorization value contains characters not allowed in a header", ErrHeaderConstruction)
	}
	h := make(http.Header, 2)
	h.Set("Authorization", auth)
	h.Set("Content-Type", "application/json")
	return h, nil
}

// Send delivers one plain-text email to recipient.
func (c *Client) Send(ctx context.Context, recipient domain.SubscriberEmail, subject, textBody string) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveDispatch(time.Since(start), err)
		}
	}()

	headers, err := c.headers()
	if err != nil {
		logger.Error("email client misconfigured", "error", err)
		return err
	}

	payload, err := json.Marshal(emailContent{
		From:     c.sender.String(),
		To:       recipient.String(),
		Subject:  subject,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrDispatch, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrDispatch, err)
	}
	req.Header = headers

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("email dispatch failed", "recipient_email", recipient.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("email provider rejected message", "recipient_email", recipient.String(), "status", resp.StatusCode)
		return fmt.Errorf("%w: provider returned status %d", ErrDispatch, resp.StatusCode)
	}

	logger.Debug("email dispatched", "recipient_email", recipient.String(), "status", resp.StatusCode)
	return nil
}

// Package device uploads finished frames to the preview endpoint of the mask
// bridge.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/grid"
)

// ErrCoolingDown is returned when an upload starts within the cool-down
// window of the previous one.
var ErrCoolingDown = errors.New("device: upload cooling down")

const (
	DefaultURL      = "http://127.0.0.1:5001/preview"
	DefaultCooldown = 2 * time.Second
	DefaultTimeout  = 60 * time.Second
)

// Response is the JSON document returned by the endpoint.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// StatusError reports a rejected upload.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device: upload failed with status %d", e.Code)
	}
	return fmt.Sprintf("device: upload failed with status %d: %s", e.Code, e.Message)
}

// Client posts payloads to a single endpoint. Uploads are never retried.
type Client struct {
	url      string
	http     *http.Client
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCooldown sets the minimum spacing between upload starts.
func WithCooldown(d time.Duration) Option { return func(c *Client) { c.cooldown = d } }

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New creates a client for url. An empty url selects DefaultURL.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:      url,
		http:     &http.Client{Timeout: DefaultTimeout},
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// URL returns the endpoint.
func (c *Client) URL() string { return c.url }

// Remaining returns how long until the next upload may start.
func (c *Client) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *Client) remainingLocked() time.Duration {
	if c.last.IsZero() {
		return 0
	}
	d := c.cooldown - c.now().Sub(c.last)
	if d < 0 {
		return 0
	}
	return d
}

// Ready reports whether an upload may start now.
func (c *Client) Ready() bool { return c.Remaining() == 0 }

// Upload sends colors as the JSON payload. The cool-down starts when the
// request starts, whatever its outcome.
func (c *Client) Upload(ctx context.Context, colors []grid.Color, opts export.Options) error {
	body, err := export.Payload(colors, opts)
	if err != nil {
		return fmt.Errorf("device: encode payload: %w", err)
	}
	c.mu.Lock()
	if c.remainingLocked() > 0 {
		c.mu.Unlock()
		return ErrCoolingDown
	}
	c.last = c.now()
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("device: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	logrus.WithField("url", c.url).Debug("uploading frame")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("device: upload: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("device: read response: %w", err)
	}
	var r Response
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &r); err != nil {
			r.Message = strings.TrimSpace(string(data))
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: r.Message}
	}
	switch strings.ToLower(r.Status) {
	case "ok", "success":
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %q", r.Status)
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/state"
)

const maxRejectionBody = 1 << 20

// RejectedError is returned by WebhookSubmitter when the endpoint answers
// 422 with field messages.
type RejectedError struct {
	Status int
	// Errors is keyed by field id or path, as sent by the endpoint.
	Errors map[string][]string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("session: submission rejected (%d, %d keys)", e.Status, len(e.Errors))
}

// WebhookOption configures a WebhookSubmitter.
type WebhookOption func(*WebhookSubmitter)

// WithHTTPClient sets the client used to post submissions.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(w *WebhookSubmitter) {
		if client != nil {
			w.client = client
		}
	}
}

// WithWebhookTimeout bounds each post.
func WithWebhookTimeout(timeout time.Duration) WebhookOption {
	return func(w *WebhookSubmitter) {
		w.timeout = timeout
	}
}

// WithHeader adds a header to every post.
func WithHeader(key, value string) WebhookOption {
	return func(w *WebhookSubmitter) {
		w.headers.Set(key, value)
	}
}

// WebhookSubmitter posts accepted payloads as JSON to a URL.
type WebhookSubmitter struct {
	url     string
	client  *http.Client
	timeout time.Duration
	headers http.Header
}

var _ state.Submitter = (*WebhookSubmitter)(nil)

// NewWebhookSubmitter returns a submitter that posts to url.
func NewWebhookSubmitter(url string, opts ...WebhookOption) *WebhookSubmitter {
	w := &WebhookSubmitter{
		url:     strings.TrimSpace(url),
		client:  http.DefaultClient,
		timeout: 10 * time.Second,
		headers: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Submit posts payload. Any 2xx answer is success; 422 yields a
// *RejectedError carrying the endpoint's messages; other answers fail.
func (w *WebhookSubmitter) Submit(ctx context.Context, payload model.Values) error {
	if w.url == "" {
		return errors.New("session: webhook url is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("session: encode payload: %w", err)
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if w.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("session: webhook request: %w", err)
	}
	for key, values := range w.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("session: webhook post: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxRejectionBody))
		if err != nil {
			return fmt.Errorf("session: read rejection: %w", err)
		}
		return &RejectedError{Status: resp.StatusCode, Errors: decodeRejection(data)}
	default:
		return fmt.Errorf("session: webhook unexpected status %s", resp.Status)
	}
}

// decodeRejection accepts {"errors": {...}} or a bare map, with each entry a
// string or a list of strings.
func decodeRejection(data []byte) map[string][]string {
	var envelope struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Errors) > 0 {
		raw = envelope.Errors
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return map[string][]string{"": {strings.TrimSpace(string(data))}}
	}

	out := make(map[string][]string, len(raw))
	for key, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			out[key] = list
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			out[key] = []string{single}
		}
	}
	return out
}

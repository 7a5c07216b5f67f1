package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultDeliveryTimeout = 10 * time.Second

// ErrSetupRequired is the error code the delivery API returns when the
// provider is not configured yet.
const ErrSetupRequired = "SETUP_REQUIRED"

// PostJSON sends body to url and returns the parsed delivery response.
// A body that is not JSON-shaped (an HTML error page from a proxy, say) is
// reported as a malformed_response SendError instead of being parsed
// leniently.
func PostJSON(ctx context.Context, client *http.Client, url string, body any) (*DeliveryResponse, int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, &SendError{Kind: FailureGeneric, Reason: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, &SendError{Kind: FailureGeneric, Reason: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &SendError{Kind: FailureGeneric, Reason: "delivery request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &SendError{Kind: FailureGeneric, Reason: "read response", Err: err}
	}

	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, resp.StatusCode, &SendError{
			Kind:   FailureMalformedResponse,
			Reason: fmt.Sprintf("delivery API returned a non-JSON response (status %d)", resp.StatusCode),
		}
	}

	var parsed DeliveryResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, resp.StatusCode, &SendError{
			Kind:   FailureMalformedResponse,
			Reason: fmt.Sprintf("delivery API response parsing failed (status %d)", resp.StatusCode),
			Err:    err,
		}
	}

	return &parsed, resp.StatusCode, nil
}

// DrainClient delivers a queued operation during a drain cycle.
type DrainClient interface {
	Deliver(ctx context.Context, op QueuedOperation) error
}

// HTTPDrainClient posts queued payloads to the generic drain endpoint. The
// endpoint dispatches by payload shape, so one URL serves both channels.
type HTTPDrainClient struct {
	url    string
	client *http.Client
}

// NewHTTPDrainClient creates a drain client for the given endpoint.
func NewHTTPDrainClient(url string, timeout time.Duration) *HTTPDrainClient {
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &HTTPDrainClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Deliver posts the operation payload as-is. Any non-2xx status fails the
// attempt; classification is not needed here because drain retries are
// bounded by the queue itself.
func (c *HTTPDrainClient) Deliver(ctx context.Context, op QueuedOperation) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(op.Payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver %s operation: %w", op.Channel, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("deliver %s operation: unexpected status %d", op.Channel, resp.StatusCode)
	}
	return nil
}

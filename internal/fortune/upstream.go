package fortune

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"
)

// DefaultEndpoint is the public computers fortune feed.
const DefaultEndpoint = "http://yerkee.com/api/fortune/computers"

const maxPayloadBytes = 1 << 20

var errNoFortune = errors.New("response has no fortune field")

// Fetcher retrieves one fortune from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context) (Result, error)
}

// UpstreamError is the single failure category of the handler: anything that
// went wrong while calling or decoding the fortune API.
type UpstreamError struct {
	Op    string
	Err   error
	Stack []byte
}

func newUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{
		Op:    op,
		Err:   err,
		Stack: debug.Stack(),
	}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fortune upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TypeName is the Go type of the underlying cause, e.g. "*url.Error".
func (e *UpstreamError) TypeName() string {
	if e.Err == nil {
		return fmt.Sprintf("%T", e)
	}
	return fmt.Sprintf("%T", e.Err)
}

// Client fetches fortunes over HTTP. It issues exactly one GET per Fetch and
// never retries.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient returns a Client for endpoint. A zero timeout leaves the HTTP
// client unbounded; the context passed to Fetch still applies.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL the client calls.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs the single upstream call. Every failure is an *UpstreamError.
func (c *Client) Fetch(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Result{}, newUpstreamError("build request", err)
	}
	req.Header.Set("Accept", ContentTypeJSON)

	res, err := c.client.Do(req)
	if err != nil {
		return Result{}, newUpstreamError("request", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxPayloadBytes))
		return Result{}, newUpstreamError("status", fmt.Errorf("unexpected status %s", res.Status))
	}

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxPayloadBytes))
	if err != nil {
		return Result{}, newUpstreamError("read body", err)
	}

	var body struct {
		Fortune *string `json:"fortune"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Result{}, newUpstreamError("decode", err)
	}
	if body.Fortune == nil {
		return Result{}, newUpstreamError("decode", errNoFortune)
	}

	return Result{Fortune: *body.Fortune}, nil
}

// Package engine is the HTTP boundary to the external workflow execution engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/metrics"

	"golang.org/x/oauth2"
)

const (
	executePath = "/execute"

	// genericFailure is reported when the engine's error body does not parse.
	genericFailure = "execution engine request failed"

	maxBodyBytes = 1 << 20
)

// Client submits runs to the engine on behalf of the current caller.
type Client struct {
	baseURL   string
	identity  ports.IdentityProvider
	timeout   time.Duration
	transport http.RoundTripper
}

// NewClient fails with domain.ErrNotConfigured when baseURL is empty.
func NewClient(baseURL string, identity ports.IdentityProvider, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: execution engine url is empty", domain.ErrNotConfigured)
	}
	return &Client{
		baseURL:   baseURL,
		identity:  identity,
		timeout:   timeout,
		transport: http.DefaultTransport,
	}, nil
}

// Dispatch asks the engine to start a run and returns the engine's handle
// unchanged. It does not wait for the run.
func (c *Client) Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error) {
	token, ok := c.identity.SessionCredential(ctx)
	if !ok {
		metrics.Dispatches.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w: no session credential for the execution engine", domain.ErrUnauthorized)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+executePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient(token).Do(httpReq)
	if err != nil {
		metrics.Dispatches.WithLabelValues("unreachable").Inc()
		return nil, fmt.Errorf("failed to reach execution engine: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.Dispatches.WithLabelValues("unreachable").Inc()
		return nil, fmt.Errorf("failed to read engine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Dispatches.WithLabelValues("rejected").Inc()
		return nil, &domain.EngineError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	// A 2xx without a usable handle carries 502, not the engine's status.
	var result domain.DispatchResult
	if err := json.Unmarshal(raw, &result); err != nil || result.ExecutionID == "" {
		metrics.Dispatches.WithLabelValues("malformed").Inc()
		return nil, &domain.EngineError{StatusCode: http.StatusBadGateway, Message: genericFailure}
	}

	metrics.Dispatches.WithLabelValues("ok").Inc()
	return &result, nil
}

func (c *Client) httpClient(token string) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return genericFailure
	}
	return body.Error
}

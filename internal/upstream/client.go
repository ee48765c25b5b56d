// Package upstream implements the HTTP client for the external
// OpenAI-compatible provider, with per-endpoint retry/cooldown handling
// and a streaming response mode.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arkodas/llamagate/internal/types"
)

// defaultMaxAttempts bounds the retry loop for a single logical call.
const defaultMaxAttempts = 3

// errorBodyLimit caps how much of an upstream error body is read.
const errorBodyLimit = 32 << 10

// Client issues requests to the upstream provider.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	cooldowns   *CooldownTracker
	logger      *slog.Logger
	maxAttempts int

	// sleep is injected so tests can observe backoff without real delays.
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a client for the given base URL (including the version
// prefix, e.g. "https://api.a4f.co/v1") and bearer credential.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			// DisableCompression required for streaming
			Transport: &http.Transport{DisableCompression: true},
		},
		cooldowns:   NewCooldownTracker(),
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepContext,
	}
}

// Cooldowns exposes the tracker, shared across all requests of the process.
func (c *Client) Cooldowns() *CooldownTracker {
	return c.cooldowns
}

// ListModels fetches the upstream model list.
func (c *Client) ListModels(ctx context.Context) ([]types.Model, error) {
	var models []types.Model

	err := c.withRetry(ctx, EndpointModels, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, "/models", nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("models request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
			return newStatusError(resp.StatusCode, body)
		}

		var list types.ModelList
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			return fmt.Errorf("decode models response: %w", err)
		}
		models = list.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return models, nil
}

// CreateChatCompletion performs one blocking chat completion round trip.
func (c *Client) CreateChatCompletion(ctx context.Context, req *types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	var out *types.ChatCompletionResponse

	err = c.withRetry(ctx, EndpointChat, func() error {
		httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("chat completions request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
			return newStatusError(resp.StatusCode, body)
		}

		var completion types.ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
			return fmt.Errorf("decode chat response: %w", err)
		}
		out = &completion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StreamChatCompletion opens a streaming chat completion. The retry policy
// covers only the connection attempt: once the stream is handed to the
// caller, a mid-stream failure terminates it without retry, since relayed
// chunks cannot be retracted.
func (c *Client) StreamChatCompletion(ctx context.Context, req *types.ChatCompletionRequest) (Stream, error) {
	streamReq := *req
	streamReq.Stream = true

	payload, err := json.Marshal(&streamReq)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	var stream Stream

	err = c.withRetry(ctx, EndpointChat, func() error {
		httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("chat completions request: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
			resp.Body.Close()
			return newStatusError(resp.StatusCode, body)
		}

		stream = newSSEStream(resp.Body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// withRetry runs call up to maxAttempts times, honoring the endpoint's
// cooldown before each attempt. A success resets the endpoint's failure
// counter; exhausting the budget surfaces ErrUnavailable.
func (c *Client) withRetry(ctx context.Context, endpoint string, call func() error) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if wait := c.cooldowns.Remaining(endpoint); wait > 0 {
			c.logger.Debug("cooling down before upstream call",
				"endpoint", endpoint, "wait", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}

		lastErr = call()
		if lastErr == nil {
			c.cooldowns.MarkSuccess(endpoint)
			return nil
		}

		// Client-side rejections are not transient: relay them unchanged.
		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && !isTransient(statusErr.StatusCode) {
			return lastErr
		}

		// Caller cancellation is not an upstream failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.cooldowns.MarkFailure(endpoint)
		c.logger.Warn("upstream call failed",
			"endpoint", endpoint,
			"attempt", attempt,
			"failures", c.cooldowns.FailureCount(endpoint),
			"error", lastErr)
	}

	return fmt.Errorf("%w: %s failed after %d attempts: %v",
		ErrUnavailable, endpoint, c.maxAttempts, lastErr)
}

// newRequest builds an authenticated upstream request.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

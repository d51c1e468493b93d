// Package llm wraps the Claude Haiku API for advisor decisions and the
// quarterly intelligence briefing.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-haiku-4-5-20251001"

	maxCallsPerMinute = 20
	maxAttempts       = 3
	retryBackoff      = 2 * time.Second
)

// Client is a minimal Anthropic Messages client. The simulation survives
// without it, so every failure path degrades to an error the caller can
// fall back from.
type Client struct {
	apiKey     string
	httpClient *http.Client

	mu      sync.Mutex
	calls   int
	resetAt time.Time
}

// NewClient creates a Haiku client, or nil when no key is configured.
// A nil client is valid: Enabled reports false and callers use their
// heuristic fallbacks.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether the client can make API calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Message is one chat turn in a Messages request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a single-turn prompt and returns the model's text.
// Overload and server errors are retried with a short backoff; anything
// else fails immediately.
func (c *Client) Complete(system, userPrompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm client not configured")
	}
	if err := c.reserveCall(); err != nil {
		return "", err
	}

	body, err := json.Marshal(request{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []Message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * retryBackoff)
			slog.Warn("retrying haiku call", "attempt", attempt, "err", lastErr)
		}
		text, retryable, err := c.call(body)
		if err == nil {
			return text, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("haiku call failed after %d attempts: %w", maxAttempts, lastErr)
}

// reserveCall enforces the per-minute budget across goroutines.
func (c *Client) reserveCall() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.calls = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.calls >= maxCallsPerMinute {
		return fmt.Errorf("llm budget exhausted (%d calls/min)", maxCallsPerMinute)
	}
	c.calls++
	return nil
}

// call performs one HTTP round trip. The second return reports whether the
// failure is worth retrying (transport errors, 429, 529, 5xx).
func (c *Client) call(body []byte) (string, bool, error) {
	httpReq, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("api error %d: %s", resp.StatusCode, respBody)
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", false, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", false, fmt.Errorf("empty response")
	}

	slog.Debug("haiku call",
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)
	return apiResp.Content[0].Text, false, nil
}

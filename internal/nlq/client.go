// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package nlq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"chatdb/cli/internal/logging"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible endpoint root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the completion model used for translation.
	DefaultModel = "llama-3.3-70b-versatile"
	// DefaultTimeout bounds one translation round-trip.
	DefaultTimeout = 30 * time.Second

	// Low temperature keeps SQL generation consistent between calls.
	temperature = 0.1
	maxTokens   = 500
)

// Config carries the settings for a translation client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client translates natural-language questions to SQL through a hosted
// chat-completion endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a translation client. Zero-value Config fields fall back to
// the package defaults.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Available reports whether the client can make calls at all.
func (c *Client) Available() bool { return c != nil && c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Translate converts a natural-language question into one SQL statement
// using the provided schema description. The returned SQL has markdown
// fences and surrounding prose already stripped.
func (c *Client) Translate(ctx context.Context, schemaText, question string) (string, error) {
	if !c.Available() {
		return "", ErrNoAPIKey
	}

	system, user := BuildPrompt(schemaText, question)
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logging.Debugf("translate: model=%s question=%q", c.model, question)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	if err := classifyStatus(resp.StatusCode, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	sql, err := Extract(out.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	logging.Debugf("translate: generated SQL: %s", sql)
	return sql, nil
}

// classifyStatus maps provider status codes onto the failure taxonomy.
func classifyStatus(status int, out *chatResponse) error {
	apiMessage := ""
	if out != nil && out.Error != nil {
		apiMessage = out.Error.Message
	}
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuth, nonEmpty(apiMessage, "invalid or missing API key"))
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, nonEmpty(apiMessage, "too many requests"))
	default:
		return &APIError{StatusCode: status, Message: apiMessage}
	}
}

// classifyTransportError folds timeouts, DNS failures, and refused
// connections into ErrNetwork so the REPL can present them uniformly.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: request timed out", ErrNetwork)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: cannot resolve host", ErrNetwork)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: connection refused", ErrNetwork)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", ErrNetwork)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package nlq

import (
	"errors"
	"fmt"
)

// Sentinel failures of the translation pipeline. The REPL maps each to a
// user-facing message and keeps running; none of these are fatal.
var (
	ErrNoSQL         = errors.New("no recognizable SQL in model response")
	ErrEmptyResponse = errors.New("empty model response")
	ErrAuth          = errors.New("authentication failed")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrNetwork       = errors.New("network error")
	ErrNoAPIKey      = errors.New("no API key configured")
)

// APIError is a provider failure that fits none of the sentinel categories.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// UserMessage maps a translation failure to the message shown at the prompt.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return "Natural Language mode is not available: no API key configured."
	case errors.Is(err, ErrAuth):
		return "Authentication failed. Please check your GROQ_API_KEY."
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded. Please wait a moment and try again."
	case errors.Is(err, ErrNetwork):
		return "Network error. Please check your internet connection."
	case errors.Is(err, ErrEmptyResponse):
		return "The model returned an empty response. Please try rephrasing your question."
	case errors.Is(err, ErrNoSQL):
		return "The generated response doesn't appear to contain valid SQL. Please try rephrasing your question."
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return "API error: " + apiErr.Error()
		}
		return "Translation failed: " + err.Error()
	}
}

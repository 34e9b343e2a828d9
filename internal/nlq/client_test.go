// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package nlq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "gsk_test", BaseURL: srv.URL})
}

func TestTranslateSuccess(t *testing.T) {
	var gotReq chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("```sql\nSELECT * FROM startups;\n```")))
	})

	sql, err := c.Translate(context.Background(), "Table: startups", "Show me all startups")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM startups", sql)

	// The request carries the schema in the system message and the question
	// in the user message.
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "Table: startups")
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "Show me all startups")
	assert.Equal(t, DefaultModel, gotReq.Model)
	assert.InDelta(t, 0.1, gotReq.Temperature, 1e-9)
	assert.Equal(t, 500, gotReq.MaxTokens)
}

func TestTranslateAuthFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	})

	_, err := c.Translate(context.Background(), "", "anything")
	require.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestTranslateRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	})

	_, err := c.Translate(context.Background(), "", "anything")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestTranslateUnknownAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"internal"}}`))
	})

	_, err := c.Translate(context.Background(), "", "anything")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestTranslateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	c := New(Config{APIKey: "gsk_test", BaseURL: url})
	_, err := c.Translate(context.Background(), "", "anything")
	require.ErrorIs(t, err, ErrNetwork)
}

func TestTranslateEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Translate(context.Background(), "", "anything")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestTranslateNoSQLInResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("I cannot answer that with the given schema.")))
	})

	_, err := c.Translate(context.Background(), "", "what's the weather")
	require.ErrorIs(t, err, ErrNoSQL)
}

func TestTranslateWithoutAPIKey(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Available())
	_, err := c.Translate(context.Background(), "", "anything")
	require.ErrorIs(t, err, ErrNoAPIKey)
}

func TestUserMessageMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrAuth, "Authentication failed"},
		{ErrRateLimited, "Rate limit exceeded"},
		{ErrNetwork, "Network error"},
		{ErrNoSQL, "valid SQL"},
		{ErrEmptyResponse, "empty response"},
		{ErrNoAPIKey, "no API key"},
		{&APIError{StatusCode: 500}, "API error"},
		{errors.New("odd"), "Translation failed"},
	}
	for _, tt := range tests {
		assert.Contains(t, UserMessage(tt.err), tt.want)
	}
}

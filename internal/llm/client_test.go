// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pii-redact/internal/categories"
	"pii-redact/internal/detector"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Model: "mistral"}, nil), srv
}

func TestCheckAvailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	ok, status := client.CheckAvailable(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "connected", status)
}

func TestCheckAvailableServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ok, status := client.CheckAvailable(context.Background())
	assert.False(t, ok)
	assert.Contains(t, status, "cannot connect to Ollama")
}

func TestRedactStripsCodeFences(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "REPLACEMENT MAPPING")

		json.NewEncoder(w).Encode(generateResponse{
			Response: "```\nmail [REDACTED_EMAIL] now\n```",
		})
	})

	out, err := client.Redact(context.Background(), "mail a@b.com now",
		[]categories.Category{categories.Email}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mail [REDACTED_EMAIL] now", out)
}

func TestRedactPromptCarriesCustomTags(t *testing.T) {
	var gotPrompt string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(generateResponse{Response: "x"})
	})

	_, err := client.Redact(context.Background(), "text",
		[]categories.Category{categories.Email},
		map[categories.Category]string{categories.Email: "[GONE]"})
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "email -> [GONE]")
}

func TestVerifyAppendsInstruction(t *testing.T) {
	var gotPrompt string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(generateResponse{Response: "x"})
	})

	_, err := client.Verify(context.Background(), "text",
		[]categories.Category{categories.Email}, nil)
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "final verification pass")
}

func TestAnalyzeParsesCounts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{
			Response: "```json\n{\"name\": 2, \"email\": 1, \"extra\": 9}\n```",
		})
	})

	counts, err := client.Analyze(context.Background(), "text",
		[]categories.Category{categories.Name, categories.Email})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[categories.Name])
	assert.Equal(t, 1, counts[categories.Email])
	assert.Len(t, counts, 2, "only requested categories come back")
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "I found some PII!"})
	})

	_, err := client.Analyze(context.Background(), "text",
		[]categories.Category{categories.Name})
	require.Error(t, err)
	assert.True(t, errors.Is(err, detector.ErrMalformed))
}

func TestGenerateAPIErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(generateResponse{Error: "model not found"})
	})

	_, err := client.Redact(context.Background(), "text",
		[]categories.Category{categories.Email}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, detector.ErrUnavailable))
	assert.Contains(t, err.Error(), "model not found")
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"```\nfenced\n```", "fenced"},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\nunclosed\nfence", "unclosed\nfence"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripFences(tc.in), "input %q", tc.in)
	}
}

func TestBuildAnalysisPromptListsFields(t *testing.T) {
	prompt := buildAnalysisPrompt("text", []categories.Category{categories.SSN, categories.Phone})
	assert.Contains(t, prompt, `"ssn": 0`)
	assert.Contains(t, prompt, `"phone": 0`)
	assert.True(t, strings.Contains(prompt, "ONLY the JSON response"))
}

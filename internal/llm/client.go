// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package llm implements the external detector contract against an
// Ollama server. All failures map to detector.ErrUnavailable or
// detector.ErrMalformed so the pipeline can downgrade instead of abort.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pii-redact/internal/categories"
	"pii-redact/internal/detector"
	"pii-redact/internal/observability"
	"pii-redact/internal/resilience"
)

const (
	defaultTimeout = 30 * time.Second
	probeTimeout   = 5 * time.Second

	// Low temperature: redaction is a transcription task, not a
	// creative one.
	temperature = 0.1
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an Ollama server.
type Client struct {
	baseURL  string
	model    string
	http     *http.Client
	observer *observability.Observer
}

// NewClient builds a client. A zero Timeout falls back to 30s.
func NewClient(cfg Config, observer *observability.Observer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		model:    cfg.Model,
		http:     &http.Client{Timeout: timeout},
		observer: observer,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// CheckAvailable probes the Ollama tags endpoint. The probe is retried
// with short backoff on transient failures; the core pipeline itself
// never retries.
func (c *Client) CheckAvailable(ctx context.Context) (bool, string) {
	probe := func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/api/tags", nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ollama responded with status %d", resp.StatusCode)
		}
		return nil
	}

	if err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), probe); err != nil {
		return false, "cannot connect to Ollama: " + err.Error()
	}
	return true, "connected"
}

// Redact asks the model to rewrite text with PII replaced by tags.
func (c *Client) Redact(ctx context.Context, text string, cats []categories.Category, tags map[categories.Category]string) (string, error) {
	prompt := buildRedactionPrompt(text, cats, tags)
	return c.generateText(ctx, "redact", prompt)
}

// Verify re-invokes the model on already partially redacted text with
// an explicit verification-only instruction.
func (c *Client) Verify(ctx context.Context, text string, cats []categories.Category, tags map[categories.Category]string) (string, error) {
	prompt := buildRedactionPrompt(text, cats, tags) + verifyInstruction
	return c.generateText(ctx, "verify", prompt)
}

// Analyze returns per-category occurrence counts.
func (c *Client) Analyze(ctx context.Context, text string, cats []categories.Category) (map[categories.Category]int, error) {
	raw, err := c.generateText(ctx, "analyze", buildAnalysisPrompt(text, cats))
	if err != nil {
		return nil, err
	}

	var parsed map[string]int
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", detector.ErrMalformed, err)
	}

	counts := make(map[categories.Category]int, len(cats))
	for _, cat := range cats {
		counts[cat] = parsed[cat.String()]
	}
	return counts, nil
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// generateText calls the Ollama generate endpoint and returns the
// fence-stripped completion.
func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	var finish func(bool, map[string]interface{})
	if c.observer != nil {
		finish = c.observer.StartTiming("llm_client", operation)
	}

	out, err := c.doGenerate(ctx, prompt)
	if finish != nil {
		finish(err == nil, map[string]interface{}{"model": c.model})
	}
	return out, err
}

func (c *Client) doGenerate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:       c.model,
		Prompt:      prompt,
		Stream:      false,
		Temperature: temperature,
		TopP:        0.9,
		TopK:        40,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", detector.ErrMalformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", detector.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", detector.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", detector.ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr generateResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("%w: ollama API error %d: %s", detector.ErrUnavailable, resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("%w: ollama API error %d", detector.ErrUnavailable, resp.StatusCode)
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", detector.ErrMalformed, err)
	}
	return stripFences(result.Response), nil
}

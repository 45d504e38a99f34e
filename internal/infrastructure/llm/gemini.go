// Package llm adapts the Gemini generateContent REST API to the
// ports.LLMClient collaborator contract.
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

	"AIDailyNews/internal/config"
	"AIDailyNews/internal/ports"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel    = "gemini-2.0-flash"
	defaultTimeout  = 120 * time.Second
)

const summarizePrompt = `You are an AI industry editor. Summarize the following item in at most
two sentences, keeping concrete facts (names, numbers, dates) and dropping
marketing language.

%s`

const analyzePrompt = `You are an AI industry analyst writing a daily digest. The items below are
grouped by category. For each category, synthesize the stories into a short
narrative paragraph, call out the single most significant development, and
note any cross-category trend you see. Answer in markdown, one section per
category.

%s`

const composePrompt = `Compose the AI industry daily report for %s in markdown. Start with a
one-paragraph overview, then the analysis, then a link list of the sources.
Keep the tone factual and concise.

Item summaries:
%s

Analysis:
%s`

// Client calls Gemini over HTTP. Any nil or unconfigured client fails fast
// so callers degrade to their fallbacks.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		model:      model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Summarize condenses one item's content.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	return c.generate(ctx, fmt.Sprintf(summarizePrompt, content))
}

// Analyze produces the grouped narrative for the formatted digest.
func (c *Client) Analyze(ctx context.Context, digest string) (string, error) {
	return c.generate(ctx, fmt.Sprintf(analyzePrompt, digest))
}

// ComposeReport produces the full daily document.
func (c *Client) ComposeReport(ctx context.Context, date, summary, analysis string) (string, error) {
	return c.generate(ctx, fmt.Sprintf(composePrompt, date, summary, analysis))
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	payload := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

// Package llm implements the completion provider boundary against
// OpenAI-compatible chat completion endpoints.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	httpclient "github.com/trendscout/research-service/internal/http"
	"github.com/trendscout/research-service/internal/http/ratelimit"
	"github.com/trendscout/research-service/internal/scoring"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Config holds the provider connection settings. An empty APIKey is not
// an error: NewProvider returns the null provider in that case, which is
// the documented trigger for always-fallback scoring.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	RateLimit   *ratelimit.PartialConfig
}

// OpenAIProvider issues chat-completion requests with a JSON-only
// response-format hint. It depends only on the HTTP status, the standard
// choices[0].message.content path, and that content being parseable JSON;
// everything else about the provider is opaque to this service.
type OpenAIProvider struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	model   string
	temp    float64
	tokens  int
}

// NewProvider builds a completion provider from config. Deployments
// without a credential get the null provider so "unconfigured" stays a
// constructible, testable state rather than a scattered env check.
func NewProvider(cfg Config) scoring.CompletionProvider {
	if cfg.APIKey == "" {
		slog.Info("no completion API key configured, scoring will use heuristics only")
		return scoring.NewNullProvider()
	}

	rlCfg := ratelimit.DefaultConfig()
	if cfg.RateLimit != nil {
		rlCfg = ratelimit.WithOverrides(*cfg.RateLimit)
	}

	p := &OpenAIProvider{
		client:  httpclient.NewClient(rlCfg),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		temp:    cfg.Temperature,
		tokens:  cfg.MaxTokens,
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.tokens == 0 {
		p.tokens = 1024
	}
	return p
}

// Model returns the configured model identifier.
func (p *OpenAIProvider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one system+user round trip and returns the assistant
// message content.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    p.temp,
		MaxTokens:      p.tokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	body, err := p.client.PostJSON(ctx, p.baseURL+"/chat/completions", header, payload)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode completion envelope: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion envelope has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 8192
)

// AnthropicClient implements ports.ChatCompleter for the Messages API.
type AnthropicClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatCompleter = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.ProviderConfig) *AnthropicClient {
	return &AnthropicClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: completionTimeout},
	}
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Complete(ctx context.Context, req domain.ChatRequest) (domain.Completion, error) {
	if c.apiKey == "" || c.endpoint == "" || req.Model == "" {
		return domain.Completion{}, fmt.Errorf("anthropic client misconfigured")
	}

	body := map[string]any{
		"model":      req.Model,
		"max_tokens": anthropicMaxTokens,
		"system":     safePrompt(req.SystemPrompt),
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	headers := map[string]string{
		"X-Api-Key":         c.apiKey,
		"Anthropic-Version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, c.httpClient, "anthropic", c.endpoint, headers, body, &resp); err != nil {
		return domain.Completion{}, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return domain.Completion{Text: sb.String()}, nil
}

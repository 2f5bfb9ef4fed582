package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

const completionTimeout = 2 * time.Minute

// ChatGPTClient implements ports.ChatCompleter backed by OpenAI-compatible APIs.
// Grok speaks the same protocol and reuses it.
type ChatGPTClient struct {
	name       string
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatCompleter = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(name string, cfg config.ProviderConfig) *ChatGPTClient {
	return &ChatGPTClient{
		name:     name,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: completionTimeout,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the persona as the system message and the prompt as the user message.
func (c *ChatGPTClient) Complete(ctx context.Context, req domain.ChatRequest) (domain.Completion, error) {
	if c == nil {
		return domain.Completion{}, fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || req.Model == "" {
		return domain.Completion{}, fmt.Errorf("%s client misconfigured", c.name)
	}

	body := map[string]any{
		"model": req.Model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(req.SystemPrompt)},
			{"role": "user", "content": req.Prompt},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := postJSON(ctx, c.httpClient, c.name, c.endpoint, headers, body, &resp); err != nil {
		return domain.Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("%s: no choices in response", c.name)
	}
	return domain.Completion{Text: resp.Choices[0].Message.Content}, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a helpful assistant that writes short-form video scripts."
	}
	return prompt
}

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

// GeminiClient implements ports.ChatCompleter for generateContent.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatCompleter = (*GeminiClient)(nil)

// NewGeminiClient builds a client; cfg.Endpoint is the models collection URL.
func NewGeminiClient(cfg config.ProviderConfig) *GeminiClient {
	return &GeminiClient{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: completionTimeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Complete(ctx context.Context, req domain.ChatRequest) (domain.Completion, error) {
	if c.apiKey == "" || c.baseURL == "" || req.Model == "" {
		return domain.Completion{}, fmt.Errorf("gemini client misconfigured")
	}

	body := map[string]any{
		"systemInstruction": geminiContent{Parts: []geminiPart{{Text: safePrompt(req.SystemPrompt)}}},
		"contents": []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, req.Model)
	headers := map[string]string{"X-Goog-Api-Key": c.apiKey}

	var resp geminiResponse
	if err := postJSON(ctx, c.httpClient, "gemini", url, headers, body, &resp); err != nil {
		return domain.Completion{}, err
	}
	if len(resp.Candidates) == 0 {
		return domain.Completion{}, fmt.Errorf("gemini: no candidates in response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return domain.Completion{Text: sb.String()}, nil
}

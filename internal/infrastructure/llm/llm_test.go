package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/logging"
)

func TestChatGPTClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "gpt-4.1" || len(body.Messages) != 2 || body.Messages[0].Content != "persona" || body.Messages[1].Content != "hello" {
			t.Errorf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
	}))
	defer srv.Close()

	client := NewChatGPTClient(config.ProviderOpenAI, config.ProviderConfig{Endpoint: srv.URL, APIKey: "sk-test"})
	got, err := client.Complete(context.Background(), domain.ChatRequest{Model: "gpt-4.1", SystemPrompt: "persona", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Text != "hi there" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestChatGPTClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewChatGPTClient(config.ProviderGrok, config.ProviderConfig{Endpoint: srv.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), domain.ChatRequest{Model: "grok-3", Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "grok") {
		t.Fatalf("expected provider status error, got %v", err)
	}
}

func TestChatGPTClientMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewChatGPTClient(config.ProviderOpenAI, config.ProviderConfig{Endpoint: "http://localhost"})
	if _, err := client.Complete(context.Background(), domain.ChatRequest{Model: "m"}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestAnthropicClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "ak" || r.Header.Get("Anthropic-Version") == "" {
			t.Errorf("missing anthropic headers: %v", r.Header)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["system"] != "reviewer" {
			t.Errorf("system prompt not forwarded: %v", body["system"])
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"tool_use"},{"type":"text","text":"part two"}]}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(config.ProviderConfig{Endpoint: srv.URL, APIKey: "ak"})
	got, err := client.Complete(context.Background(), domain.ChatRequest{Model: "claude", SystemPrompt: "reviewer", Prompt: "draft"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Text != "part one part two" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestGeminiClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Goog-Api-Key") != "gk" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"research "},{"text":"notes"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(config.ProviderConfig{Endpoint: srv.URL + "/models/", APIKey: "gk"})
	got, err := client.Complete(context.Background(), domain.ChatRequest{Model: "gemini-2.5-flash", Prompt: "topic"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Text != "research notes" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

type stubCompleter struct {
	requests []domain.ChatRequest
}

func (s *stubCompleter) Complete(_ context.Context, req domain.ChatRequest) (domain.Completion, error) {
	s.requests = append(s.requests, req)
	return domain.Completion{Text: "ok"}, nil
}

func TestRouterDispatchesByRole(t *testing.T) {
	t.Parallel()

	writer := &stubCompleter{}
	router := newRouter(map[domain.AgentRole]binding{
		domain.RoleScriptWriter: {provider: "openai", model: "gpt-4.1", systemPrompt: "write", client: writer},
	}, logging.Discard())

	if _, err := router.Complete(context.Background(), domain.RoleScriptWriter, "topic"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if len(writer.requests) != 1 || writer.requests[0].Model != "gpt-4.1" || writer.requests[0].SystemPrompt != "write" {
		t.Fatalf("unexpected request: %+v", writer.requests)
	}

	if _, err := router.Complete(context.Background(), domain.RoleResearcher, "topic"); err == nil {
		t.Fatalf("expected error for unbound role")
	}
}

func TestNewRouterFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Agents: map[string]config.AgentConfig{
			string(domain.RoleResearcher):     {Provider: config.ProviderGemini, Model: "g"},
			string(domain.RoleScriptReviewer): {Provider: config.ProviderAnthropic, Model: "c", SystemPrompt: "custom"},
		},
		Providers: map[string]config.ProviderConfig{
			config.ProviderGemini:    {Endpoint: "http://gemini"},
			config.ProviderAnthropic: {Endpoint: "http://anthropic"},
		},
	}

	router, err := NewRouter(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewRouter error: %v", err)
	}
	if _, ok := router.bindings[domain.RoleResearcher].client.(*GeminiClient); !ok {
		t.Fatalf("researcher should be bound to gemini")
	}
	if router.bindings[domain.RoleResearcher].systemPrompt == "" {
		t.Fatalf("default persona missing")
	}
	if router.bindings[domain.RoleScriptReviewer].systemPrompt != "custom" {
		t.Fatalf("configured persona must win")
	}

	cfg.Agents[string(domain.RoleScriptWriter)] = config.AgentConfig{Provider: "mystery"}
	if _, err := NewRouter(cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

type binding struct {
	provider     string
	model        string
	systemPrompt string
	client       ports.ChatCompleter
}

// Router implements ports.AgentClient by dispatching every role to its
// configured provider, model and persona.
type Router struct {
	bindings map[domain.AgentRole]binding
	logger   *slog.Logger
}

var _ ports.AgentClient = (*Router)(nil)

// NewRouter builds one client per referenced provider and binds every configured role.
func NewRouter(cfg config.Config, logger *slog.Logger) (*Router, error) {
	clients := map[string]ports.ChatCompleter{}
	bindings := make(map[domain.AgentRole]binding, len(cfg.Agents))

	for _, role := range domain.AgentRoles() {
		agent, ok := cfg.Agent(role)
		if !ok {
			continue
		}

		client, ok := clients[agent.Provider]
		if !ok {
			provider, found := cfg.Providers[agent.Provider]
			if !found {
				return nil, fmt.Errorf("agent %s: provider %q is not configured", role, agent.Provider)
			}
			var err error
			client, err = newCompleter(agent.Provider, provider)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", role, err)
			}
			clients[agent.Provider] = client
		}

		prompt := agent.SystemPrompt
		if prompt == "" {
			prompt = defaultPersona(role)
		}
		bindings[role] = binding{
			provider:     agent.Provider,
			model:        agent.Model,
			systemPrompt: prompt,
			client:       client,
		}
	}

	return newRouter(bindings, logger), nil
}

// newRouter wires pre-built completers.
func newRouter(bindings map[domain.AgentRole]binding, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{bindings: bindings, logger: logger}
}

func newCompleter(name string, cfg config.ProviderConfig) (ports.ChatCompleter, error) {
	switch name {
	case config.ProviderOpenAI, config.ProviderGrok:
		return NewChatGPTClient(name, cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
}

// Complete runs prompt through the persona bound to role.
func (r *Router) Complete(ctx context.Context, role domain.AgentRole, prompt string) (domain.Completion, error) {
	b, ok := r.bindings[role]
	if !ok {
		return domain.Completion{}, fmt.Errorf("no agent configured for role %s", role)
	}

	r.logger.Debug("agent call", "role", role, "provider", b.provider, "model", b.model, "prompt_len", len(prompt))
	completion, err := b.client.Complete(ctx, domain.ChatRequest{
		Model:        b.model,
		SystemPrompt: b.systemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%s via %s: %w", role, b.provider, err)
	}
	return completion, nil
}

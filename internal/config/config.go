package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"ScriptProducer/internal/domain"
)

const (
	configPathEnv       = "SCRIPT_PRODUCER_CONFIG"
	logLevelEnv         = "LOG_LEVEL"
	publicDirEnv        = "PUBLIC_DIR"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	anthropicAPIKeyEnv  = "ANTHROPIC_API_KEY"
	geminiAPIKeyEnv     = "GEMINI_API_KEY"
	grokAPIKeyEnv       = "GROK_API_KEY"
	kokoroBaseURLEnv    = "KOKORO_BASE_URL"
	kokoroAPIKeyEnv     = "KOKORO_API_KEY"
	notionTokenEnv      = "NOTION_TOKEN"
	notionDatabaseEnv   = "NOTION_DATABASE_ID"
	notionNewsDBEnv     = "NOTION_NEWS_DATABASE_ID"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	defaultMaxShortsSec = 60
)

// Store backends and LLM provider names accepted in configuration.
const (
	StoreBackendNotion = "notion"
	StoreBackendSQLite = "sqlite"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGrok      = "grok"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig             `yaml:"logging"`
	Paths         PathsConfig               `yaml:"paths"`
	Pipeline      PipelineConfig            `yaml:"pipeline"`
	Agents        map[string]AgentConfig    `yaml:"agents"`
	Providers     map[string]ProviderConfig `yaml:"providers"`
	Images        ImagesConfig              `yaml:"images"`
	TTS           TTSConfig                 `yaml:"tts"`
	Audio         AudioConfig               `yaml:"audio"`
	Store         StoreConfig               `yaml:"store"`
	Media         MediaConfig               `yaml:"media"`
	News          NewsConfig                `yaml:"news"`
	Notifications NotificationConfig        `yaml:"notifications"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PathsConfig points at the shared public output directory.
type PathsConfig struct {
	Public string `yaml:"public"`
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	EnabledOrientations      []string `yaml:"enabledOrientations"`
	MaxShortsDurationSeconds float64  `yaml:"maxShortsDurationSeconds"`
	LatestScriptsCount       int      `yaml:"latestScriptsCount"`
	Workers                  int      `yaml:"workers"`
}

// Orientations converts the configured names into domain values.
func (p PipelineConfig) Orientations() ([]domain.Orientation, error) {
	out := make([]domain.Orientation, 0, len(p.EnabledOrientations))
	for _, name := range p.EnabledOrientations {
		o, err := domain.ParseOrientation(name)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// AgentConfig binds an agent role to a provider, model and persona.
type AgentConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ProviderConfig describes how to reach one LLM API.
type ProviderConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// ImagesConfig defines the illustration provider.
type ImagesConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
	Style    string `yaml:"style"`
}

// TTSConfig groups speech providers.
type TTSConfig struct {
	Kokoro KokoroConfig `yaml:"kokoro"`
}

// KokoroConfig wires the Kokoro synthesis endpoint.
type KokoroConfig struct {
	BaseURL string            `yaml:"baseUrl"`
	APIKey  string            `yaml:"apiKey"`
	Voices  map[string]string `yaml:"voices"`
}

// AudioConfig locates the ffmpeg toolchain.
type AudioConfig struct {
	FFmpegPath  string  `yaml:"ffmpegPath"`
	FFprobePath string  `yaml:"ffprobePath"`
	MaxTempo    float64 `yaml:"maxTempo"`
}

// StoreConfig picks the script persistence backend.
type StoreConfig struct {
	Backend string       `yaml:"backend"`
	Notion  NotionConfig `yaml:"notion"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

// NotionConfig holds the Notion integration token and databases.
type NotionConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Token          string `yaml:"token"`
	DatabaseID     string `yaml:"databaseId"`
	NewsDatabaseID string `yaml:"newsDatabaseId"`
}

// SQLiteConfig points at the local script database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MediaConfig configures optional hosting of artifacts.
type MediaConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config describes the bucket used to host media for the script store.
type S3Config struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// Enabled reports whether media hosting is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != "" && s.Region != ""
}

// NewsConfig lists the sites scanned for headlines by the news run.
type NewsConfig struct {
	Sites []SiteConfig `yaml:"sites"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name     string `yaml:"name"`
	Scanner  string `yaml:"scanner"`
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
	Limit    int    `yaml:"limit"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Paths.Public == "" {
		return fmt.Errorf("paths.public is required")
	}
	if _, err := c.Pipeline.Orientations(); err != nil {
		return fmt.Errorf("pipeline.enabledOrientations: %w", err)
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.LatestScriptsCount <= 0 {
		return fmt.Errorf("pipeline.latestScriptsCount must be positive, got %d", c.Pipeline.LatestScriptsCount)
	}
	switch c.Store.Backend {
	case StoreBackendNotion, StoreBackendSQLite:
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	for name, agent := range c.Agents {
		if _, err := domain.ParseAgentRole(name); err != nil {
			return fmt.Errorf("agents: %w", err)
		}
		if _, ok := c.Providers[agent.Provider]; !ok {
			return fmt.Errorf("agents.%s: provider %q is not configured", name, agent.Provider)
		}
	}
	return nil
}

// Agent returns the binding for role, or false when none is configured.
func (c Config) Agent(role domain.AgentRole) (AgentConfig, bool) {
	agent, ok := c.Agents[string(role)]
	return agent, ok
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(publicDirEnv); v != "" {
		c.Paths.Public = v
	}

	c.overrideProviderKey(ProviderOpenAI, os.Getenv(openAIAPIKeyEnv))
	c.overrideProviderKey(ProviderAnthropic, os.Getenv(anthropicAPIKeyEnv))
	c.overrideProviderKey(ProviderGemini, os.Getenv(geminiAPIKeyEnv))
	c.overrideProviderKey(ProviderGrok, os.Getenv(grokAPIKeyEnv))

	if v := os.Getenv(openAIAPIKeyEnv); v != "" && c.Images.APIKey == "" {
		c.Images.APIKey = v
	}

	if v := os.Getenv(kokoroBaseURLEnv); v != "" {
		c.TTS.Kokoro.BaseURL = v
	}
	if v := os.Getenv(kokoroAPIKeyEnv); v != "" {
		c.TTS.Kokoro.APIKey = v
	}

	if v := os.Getenv(notionTokenEnv); v != "" {
		c.Store.Notion.Token = v
	}
	if v := os.Getenv(notionDatabaseEnv); v != "" {
		c.Store.Notion.DatabaseID = v
	}
	if v := os.Getenv(notionNewsDBEnv); v != "" {
		c.Store.Notion.NewsDatabaseID = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) overrideProviderKey(name, key string) {
	if key == "" {
		return
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	p := c.Providers[name]
	p.APIKey = key
	c.Providers[name] = p
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Paths.Public != "" {
		base.Paths.Public = override.Paths.Public
	}

	if len(override.Pipeline.EnabledOrientations) > 0 {
		base.Pipeline.EnabledOrientations = override.Pipeline.EnabledOrientations
	}
	if override.Pipeline.MaxShortsDurationSeconds > 0 {
		base.Pipeline.MaxShortsDurationSeconds = override.Pipeline.MaxShortsDurationSeconds
	}
	if override.Pipeline.LatestScriptsCount > 0 {
		base.Pipeline.LatestScriptsCount = override.Pipeline.LatestScriptsCount
	}
	if override.Pipeline.Workers > 0 {
		base.Pipeline.Workers = override.Pipeline.Workers
	}

	for name, agent := range override.Agents {
		merged := base.Agents[name]
		if agent.Provider != "" {
			merged.Provider = agent.Provider
		}
		if agent.Model != "" {
			merged.Model = agent.Model
		}
		if agent.SystemPrompt != "" {
			merged.SystemPrompt = agent.SystemPrompt
		}
		base.Agents[name] = merged
	}

	for name, provider := range override.Providers {
		merged := base.Providers[name]
		if provider.Endpoint != "" {
			merged.Endpoint = provider.Endpoint
		}
		if provider.APIKey != "" {
			merged.APIKey = provider.APIKey
		}
		base.Providers[name] = merged
	}

	if override.Images.Endpoint != "" {
		base.Images.Endpoint = override.Images.Endpoint
	}
	if override.Images.APIKey != "" {
		base.Images.APIKey = override.Images.APIKey
	}
	if override.Images.Model != "" {
		base.Images.Model = override.Images.Model
	}
	if override.Images.Style != "" {
		base.Images.Style = override.Images.Style
	}

	if override.TTS.Kokoro.BaseURL != "" {
		base.TTS.Kokoro.BaseURL = override.TTS.Kokoro.BaseURL
	}
	if override.TTS.Kokoro.APIKey != "" {
		base.TTS.Kokoro.APIKey = override.TTS.Kokoro.APIKey
	}
	for speaker, voice := range override.TTS.Kokoro.Voices {
		base.TTS.Kokoro.Voices[speaker] = voice
	}

	if override.Audio.FFmpegPath != "" {
		base.Audio.FFmpegPath = override.Audio.FFmpegPath
	}
	if override.Audio.FFprobePath != "" {
		base.Audio.FFprobePath = override.Audio.FFprobePath
	}
	if override.Audio.MaxTempo > 0 {
		base.Audio.MaxTempo = override.Audio.MaxTempo
	}

	if override.Store.Backend != "" {
		base.Store.Backend = override.Store.Backend
	}
	if override.Store.Notion.Endpoint != "" {
		base.Store.Notion.Endpoint = override.Store.Notion.Endpoint
	}
	if override.Store.Notion.Token != "" {
		base.Store.Notion.Token = override.Store.Notion.Token
	}
	if override.Store.Notion.DatabaseID != "" {
		base.Store.Notion.DatabaseID = override.Store.Notion.DatabaseID
	}
	if override.Store.Notion.NewsDatabaseID != "" {
		base.Store.Notion.NewsDatabaseID = override.Store.Notion.NewsDatabaseID
	}
	if override.Store.SQLite.Path != "" {
		base.Store.SQLite.Path = override.Store.SQLite.Path
	}

	if override.Media.S3.Bucket != "" {
		base.Media.S3 = override.Media.S3
	}

	if len(override.News.Sites) > 0 {
		base.News.Sites = override.News.Sites
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Paths:   PathsConfig{Public: "public"},
		Pipeline: PipelineConfig{
			EnabledOrientations:      []string{string(domain.OrientationPortrait)},
			MaxShortsDurationSeconds: defaultMaxShortsSec,
			LatestScriptsCount:       10,
			Workers:                  16,
		},
		Agents: map[string]AgentConfig{
			string(domain.RoleResearcher):         {Provider: ProviderGemini, Model: "gemini-2.5-flash"},
			string(domain.RoleScriptWriter):       {Provider: ProviderOpenAI, Model: "gpt-4.1"},
			string(domain.RoleScriptReviewer):     {Provider: ProviderAnthropic, Model: "claude-sonnet-4-20250514"},
			string(domain.RoleNewsResearcher):     {Provider: ProviderGrok, Model: "grok-3"},
			string(domain.RoleNewsletterWriter):   {Provider: ProviderOpenAI, Model: "gpt-4.1"},
			string(domain.RoleNewsletterReviewer): {Provider: ProviderAnthropic, Model: "claude-sonnet-4-20250514"},
		},
		Providers: map[string]ProviderConfig{
			ProviderOpenAI:    {Endpoint: "https://api.openai.com/v1/chat/completions"},
			ProviderAnthropic: {Endpoint: "https://api.anthropic.com/v1/messages"},
			ProviderGemini:    {Endpoint: "https://generativelanguage.googleapis.com/v1beta/models"},
			ProviderGrok:      {Endpoint: "https://api.x.ai/v1/chat/completions"},
		},
		Images: ImagesConfig{
			Endpoint: "https://api.openai.com/v1/images/generations",
			Model:    "gpt-image-1",
			Style:    "vibrant flat illustration, no text",
		},
		TTS: TTSConfig{
			Kokoro: KokoroConfig{
				Voices: map[string]string{
					string(domain.SpeakerCody):    "pf_dora",
					string(domain.SpeakerFelippe): "pm_alex",
				},
			},
		},
		Audio: AudioConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", MaxTempo: 1.5},
		Store: StoreConfig{
			Backend: StoreBackendNotion,
			Notion:  NotionConfig{Endpoint: "https://api.notion.com/v1"},
			SQLite:  SQLiteConfig{Path: "scripts.db"},
		},
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/panjf2000/ants/v2"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/infrastructure/audio"
	"ScriptProducer/internal/infrastructure/image"
	"ScriptProducer/internal/infrastructure/llm"
	"ScriptProducer/internal/infrastructure/parser"
	"ScriptProducer/internal/infrastructure/storage"
	"ScriptProducer/internal/infrastructure/telegram"
	"ScriptProducer/internal/infrastructure/tts"
	"ScriptProducer/internal/logging"
	"ScriptProducer/internal/ports"
	"ScriptProducer/internal/scanner"
	"ScriptProducer/internal/usecase"
)

// Mode selects which pipeline variant the process runs.
type Mode int

const (
	ModeTopic Mode = iota
	ModeNews
)

// Application wires configs to use cases and owns process-wide resources.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	pool     *ants.Pool
	closers  []func() error
	logger   *slog.Logger
}

// New builds a runnable application instance for mode.
func New(ctx context.Context, cfg config.Config, mode Mode, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.Public, 0o755); err != nil {
		return nil, fmt.Errorf("public dir: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	pool, err := ants.NewPool(cfg.Pipeline.Workers)
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}
	a.pool = pool
	a.closers = append(a.closers, func() error { pool.Release(); return nil })

	agents, err := llm.NewRouter(cfg, logging.Component(baseLogger, "llm"))
	if err != nil {
		a.Close()
		return nil, err
	}

	store, err := a.newStore(ctx, mode)
	if err != nil {
		a.Close()
		return nil, err
	}

	orientations, err := cfg.Pipeline.Orientations()
	if err != nil {
		a.Close()
		return nil, err
	}

	processor := audio.NewProcessor(cfg.Audio, logging.Component(baseLogger, "audio"))

	deps := usecase.PipelineDeps{
		Agents:             agents,
		Images:             image.NewGenerator(cfg.Images, cfg.Paths.Public, logging.Component(baseLogger, "image")),
		Speech:             tts.NewKokoro(cfg.TTS.Kokoro, cfg.Paths.Public, processor, logging.Component(baseLogger, "tts")),
		Audio:              processor,
		Store:              store,
		Pool:               pool,
		Logger:             logging.Component(baseLogger, "pipeline"),
		PublicDir:          cfg.Paths.Public,
		Orientations:       orientations,
		MaxShortsDuration:  cfg.Pipeline.MaxShortsDurationSeconds,
		LatestScriptsCount: cfg.Pipeline.LatestScriptsCount,
	}

	if mode == ModeNews && len(cfg.News.Sites) > 0 {
		registry := scanner.NewRegistry()
		registry.Register(parser.NewArxivScanner(nil))
		registry.Register(parser.NewHTMLScanner(nil))
		deps.Headlines = parser.NewStrategySource(registry, cfg.News.Sites, logging.Component(baseLogger, "source"))
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(deps)
	return a, nil
}

func (a *Application) newStore(ctx context.Context, mode Mode) (ports.ScriptStore, error) {
	var uploader ports.MediaUploader
	if a.cfg.Media.S3.Enabled() {
		s3, err := storage.NewS3Uploader(a.cfg.Media.S3)
		if err != nil {
			return nil, err
		}
		uploader = s3
	}

	switch a.cfg.Store.Backend {
	case config.StoreBackendSQLite:
		store, err := storage.OpenSQLiteStore(ctx, a.cfg.Store.SQLite.Path, a.cfg.Paths.Public, uploader)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		notion := a.cfg.Store.Notion
		databaseID := notion.DatabaseID
		if mode == ModeNews && notion.NewsDatabaseID != "" {
			databaseID = notion.NewsDatabaseID
		}
		return storage.NewNotionStore(notion, databaseID, a.cfg.Paths.Public, uploader, logging.Component(a.logger, "notion")), nil
	}
}

// RunTopic performs a single topic-driven execution.
func (a *Application) RunTopic(ctx context.Context, topic string) error {
	_, err := a.pipeline.RunTopic(ctx, topic)
	return err
}

// RunNews performs a single news-scan execution.
func (a *Application) RunNews(ctx context.Context) error {
	_, err := a.pipeline.RunNews(ctx)
	return err
}

// Close releases the worker pool and any open store.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

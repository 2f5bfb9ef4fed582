package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/panjf2000/ants/v2"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/logging"
	"ScriptProducer/internal/ports"
)

const defaultLatestScripts = 10

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Agents    ports.AgentClient
	Images    ports.ImageGenerator
	Speech    ports.SpeechSynthesizer
	Audio     ports.AudioProcessor
	Store     ports.ScriptStore
	Headlines ports.HeadlineSource
	Notifier  ports.Notifier
	Pool      *ants.Pool
	Logger    *slog.Logger

	PublicDir          string
	Orientations       []domain.Orientation
	MaxShortsDuration  float64
	LatestScriptsCount int
}

// Pipeline turns a topic or a news scan into persisted, illustrated scripts.
type Pipeline struct {
	agents    ports.AgentClient
	images    ports.ImageGenerator
	speech    ports.SpeechSynthesizer
	audio     ports.AudioProcessor
	store     ports.ScriptStore
	headlines ports.HeadlineSource
	notifier  ports.Notifier
	pool      *ants.Pool
	logger    *slog.Logger

	publicDir         string
	orientations      []domain.Orientation
	maxShortsDuration float64
	latestCount       int
}

// Run is the state of one pipeline invocation.
type Run struct {
	Subject  string
	Research string
	Draft    string
	Review   string
	Scripts  []domain.Script
}

type variant struct {
	name            string
	researcher      domain.AgentRole
	writer          domain.AgentRole
	reviewer        domain.AgentRole
	fallbackToDraft bool
	thumbnails      bool
	maxDuration     float64
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	latest := deps.LatestScriptsCount
	if latest <= 0 {
		latest = defaultLatestScripts
	}
	orientations := deps.Orientations
	if orientations == nil {
		orientations = []domain.Orientation{domain.OrientationPortrait}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Pipeline{
		agents:            deps.Agents,
		images:            deps.Images,
		speech:            deps.Speech,
		audio:             deps.Audio,
		store:             deps.Store,
		headlines:         deps.Headlines,
		notifier:          deps.Notifier,
		pool:              deps.Pool,
		logger:            logger,
		publicDir:         deps.PublicDir,
		orientations:      orientations,
		maxShortsDuration: deps.MaxShortsDuration,
		latestCount:       latest,
	}
}

// RunTopic researches, writes, reviews and publishes scripts about topic.
// Review output that cannot be decoded aborts the run.
func (p *Pipeline) RunTopic(ctx context.Context, topic string) (*Run, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrMissingTopic
	}

	v := variant{
		name:       "topic",
		researcher: domain.RoleResearcher,
		writer:     domain.RoleScriptWriter,
		reviewer:   domain.RoleScriptReviewer,
		thumbnails: true,
	}

	p.logger.Info("starting research", "topic", topic)
	run := &Run{Subject: topic}
	return run, p.execute(ctx, run, v, topicResearchPrompt(topic), func(research string) string {
		return topicWriterPrompt(topic, research)
	})
}

// RunNews looks for fresh news angles that were not yet published and turns them
// into short-form scripts. Malformed review output falls back to the draft once.
func (p *Pipeline) RunNews(ctx context.Context) (*Run, error) {
	latest, err := p.store.RetrieveLatestScripts(ctx, p.latestCount)
	if err != nil {
		return nil, fmt.Errorf("retrieve latest scripts: %w", err)
	}

	var headlines []domain.Headline
	if p.headlines != nil {
		headlines, err = p.headlines.Headlines(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan headlines: %w", err)
		}
	}

	v := variant{
		name:            "news",
		researcher:      domain.RoleNewsResearcher,
		writer:          domain.RoleNewsletterWriter,
		reviewer:        domain.RoleNewsletterReviewer,
		fallbackToDraft: true,
		maxDuration:     p.maxShortsDuration,
	}

	p.logger.Info("starting research about the latest news", "published", len(latest), "headlines", len(headlines))
	prompt := newsResearchPrompt(latest, headlines)
	run := &Run{Subject: prompt}
	return run, p.execute(ctx, run, v, prompt, func(research string) string {
		return research
	})
}

func (p *Pipeline) execute(ctx context.Context, run *Run, v variant, researchPrompt string, writerPrompt func(string) string) error {
	research, err := p.complete(ctx, "research", v.researcher, researchPrompt)
	if err != nil {
		return err
	}
	run.Research = research
	p.logger.Info("research complete", "variant", v.name, "research", research)

	p.logger.Info("writing script based on research")
	draft, err := p.complete(ctx, "draft", v.writer, writerPrompt(research))
	if err != nil {
		return err
	}
	run.Draft = draft

	p.logger.Info("reviewing script")
	review, err := p.complete(ctx, "review", v.reviewer, draft)
	if err != nil {
		return err
	}
	run.Review = review

	scripts, err := p.decode(v, review, draft)
	if err != nil {
		return err
	}
	run.Scripts = scripts

	for i := range run.Scripts {
		if err := p.processScript(ctx, v, &run.Scripts[i]); err != nil {
			return fmt.Errorf("script %d %q: %w", i, run.Scripts[i].Title, err)
		}
	}

	p.logger.Info("pipeline finished", "variant", v.name, "scripts", len(run.Scripts))
	return nil
}

func (p *Pipeline) complete(ctx context.Context, stage string, role domain.AgentRole, prompt string) (string, error) {
	completion, err := p.agents.Complete(ctx, role, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", stage, err)
	}
	if strings.TrimSpace(completion.Text) == "" {
		return "", fmt.Errorf("%s: %s: %w", stage, role, ErrEmptyCompletion)
	}
	return completion.Text, nil
}

func (p *Pipeline) decode(v variant, review, draft string) ([]domain.Script, error) {
	result := DecodeScripts(review)
	if result.OK() {
		return result.Scripts, nil
	}
	if !v.fallbackToDraft {
		return nil, fmt.Errorf("decode review: %w", result.Err)
	}

	p.logger.Warn("failed to parse reviewed script, falling back to draft", "error", result.Err)
	fallback := DecodeScripts(draft)
	if fallback.OK() {
		return fallback.Scripts, nil
	}
	return nil, fmt.Errorf("decode review: %w; decode draft: %w", result.Err, fallback.Err)
}

// processScript runs the per-script stages. Every file it creates is removed
// before it returns: strictly after persistence on success, best-effort on failure.
func (p *Pipeline) processScript(ctx context.Context, v variant, script *domain.Script) (err error) {
	logger := p.logger.With("title", script.Title)
	logger.Info("processing script", "segments", len(script.Segments))

	files := &artifacts{}
	defer func() {
		if err != nil {
			files.discard(logger)
		}
	}()

	transcriptPath, err := saveTranscript(p.publicDir, *script)
	if err != nil {
		return err
	}
	files.track(transcriptPath)

	audio, err := p.narrate(ctx, script.Segments, v.maxDuration, files)
	if err != nil {
		return err
	}
	script.AudioSrc = audio.FileName
	logger.Debug("narration ready", "audio", audio.FileName, "duration", audio.Duration)

	if err := p.illustrate(ctx, script, files); err != nil {
		return err
	}

	thumbnails := []string{}
	if v.thumbnails {
		thumbnails, err = p.generateThumbnails(ctx, script.Title, files)
		if err != nil {
			return err
		}
	}

	err = p.store.SaveScript(ctx, *script, domain.NewMetadata(script.Title), thumbnails, p.orientations, filepath.Base(transcriptPath))
	if err != nil {
		return fmt.Errorf("save script: %w", err)
	}

	if err := files.remove(); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	p.notify(ctx, logger, domain.NewSavedNotice(v.name, *script, audio, len(thumbnails)))
	return nil
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, notice domain.SavedNotice) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.ScriptSaved(ctx, notice); err != nil {
		logger.Warn("notify", "error", err)
	}
}

func (p *Pipeline) artifactPath(rel string) string {
	return filepath.Join(p.publicDir, rel)
}

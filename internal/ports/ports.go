package ports

import (
	"context"

	"ScriptProducer/internal/domain"
)

// AgentClient runs a single completion for the persona selected by role.
type AgentClient interface {
	Complete(ctx context.Context, role domain.AgentRole, prompt string) (domain.Completion, error)
}

// ChatCompleter is one LLM provider behind the agent router.
type ChatCompleter interface {
	Complete(ctx context.Context, req domain.ChatRequest) (domain.Completion, error)
}

// ImageGenerator renders illustrations and thumbnails into the public directory.
// Both methods return a path relative to that directory, or "" when nothing was produced.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, id string) (string, error)
	GenerateThumbnail(ctx context.Context, title string, orientation domain.Orientation) (string, error)
}

// SpeechSynthesizer turns an ordered multi-speaker script into one audio file.
type SpeechSynthesizer interface {
	SynthesizeScript(ctx context.Context, segments []domain.Segment, id string) (domain.Audio, error)
}

// AudioProcessor performs low-level audio file operations.
type AudioProcessor interface {
	Concat(ctx context.Context, inputs []string, output string) error
	Duration(ctx context.Context, path string) (float64, error)
	FitDuration(ctx context.Context, path string, maxSeconds float64) (float64, error)
}

// ScriptStore durably stores finished scripts.
type ScriptStore interface {
	SaveScript(ctx context.Context, script domain.Script, meta domain.Metadata, thumbnails []string, orientations []domain.Orientation, transcriptFile string) error
	RetrieveLatestScripts(ctx context.Context, count int) ([]domain.Script, error)
}

// MediaUploader hosts a local artifact and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// HeadlineSource scans news sites for recently published items.
type HeadlineSource interface {
	Headlines(ctx context.Context) ([]domain.Headline, error)
}

// Notifier tells an operator channel that a script was persisted.
type Notifier interface {
	ScriptSaved(ctx context.Context, notice domain.SavedNotice) error
}

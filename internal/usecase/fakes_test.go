package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"ScriptProducer/internal/domain"
)

type fakeAgents struct {
	mu        sync.Mutex
	responses map[domain.AgentRole]string
	errs      map[domain.AgentRole]error
	calls     []agentCall
}

type agentCall struct {
	role   domain.AgentRole
	prompt string
}

func (f *fakeAgents) Complete(_ context.Context, role domain.AgentRole, prompt string) (domain.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, agentCall{role: role, prompt: prompt})
	if err := f.errs[role]; err != nil {
		return domain.Completion{}, err
	}
	text, ok := f.responses[role]
	if !ok {
		return domain.Completion{}, fmt.Errorf("no response for %s", role)
	}
	return domain.Completion{Text: text}, nil
}

func (f *fakeAgents) roles() []domain.AgentRole {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AgentRole, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.role)
	}
	return out
}

type fakeImages struct {
	dir        string
	failOn     string
	thumbEmpty bool

	mu         sync.Mutex
	generated  []string
	thumbnails []domain.Orientation
}

func (f *fakeImages) Generate(ctx context.Context, prompt string, _ string) (string, error) {
	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errors.New("image provider rejected prompt")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := "image-" + uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte("png"), 0o644); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.generated = append(f.generated, prompt)
	f.mu.Unlock()
	return name, nil
}

func (f *fakeImages) GenerateThumbnail(_ context.Context, _ string, orientation domain.Orientation) (string, error) {
	f.mu.Lock()
	f.thumbnails = append(f.thumbnails, orientation)
	f.mu.Unlock()
	if f.thumbEmpty {
		return "", nil
	}
	name := "thumbnail-" + strings.ToLower(string(orientation)) + "-" + uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte("png"), 0o644); err != nil {
		return "", err
	}
	return name, nil
}

type fakeSpeech struct {
	dir      string
	duration float64
	err      error

	mu        sync.Mutex
	calls     [][]domain.Segment
	dirAtCall [][]string
}

func (f *fakeSpeech) SynthesizeScript(_ context.Context, segments []domain.Segment, _ string) (domain.Audio, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]domain.Segment(nil), segments...))
	f.dirAtCall = append(f.dirAtCall, listDir(f.dir))
	f.mu.Unlock()
	if f.err != nil {
		return domain.Audio{}, f.err
	}
	name := "kokoro-" + uuid.NewString() + ".wav"
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte("wav"), 0o644); err != nil {
		return domain.Audio{}, err
	}
	return domain.Audio{FileName: name, Duration: f.duration}, nil
}

type fakeAudio struct {
	fitted []float64
}

func (f *fakeAudio) Concat(context.Context, []string, string) error { return nil }

func (f *fakeAudio) Duration(context.Context, string) (float64, error) { return 0, nil }

func (f *fakeAudio) FitDuration(_ context.Context, _ string, maxSeconds float64) (float64, error) {
	f.fitted = append(f.fitted, maxSeconds)
	return maxSeconds, nil
}

type savedScript struct {
	script       domain.Script
	meta         domain.Metadata
	thumbnails   []string
	orientations []domain.Orientation
	transcript   string
	dirAtSave    []string
}

type fakeStore struct {
	dir    string
	latest []domain.Script
	err    error
	saved  []savedScript
	asked  int
}

func (f *fakeStore) SaveScript(_ context.Context, script domain.Script, meta domain.Metadata, thumbnails []string, orientations []domain.Orientation, transcript string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, savedScript{
		script:       script,
		meta:         meta,
		thumbnails:   thumbnails,
		orientations: orientations,
		transcript:   transcript,
		dirAtSave:    listDir(f.dir),
	})
	return nil
}

func (f *fakeStore) RetrieveLatestScripts(_ context.Context, count int) ([]domain.Script, error) {
	f.asked = count
	return f.latest, nil
}

type fakeHeadlines struct {
	items []domain.Headline
}

func (f *fakeHeadlines) Headlines(context.Context) ([]domain.Headline, error) {
	return f.items, nil
}

type fakeNotifier struct {
	notices []domain.SavedNotice
}

func (f *fakeNotifier) ScriptSaved(_ context.Context, notice domain.SavedNotice) error {
	f.notices = append(f.notices, notice)
	return nil
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

type harness struct {
	dir      string
	agents   *fakeAgents
	images   *fakeImages
	speech   *fakeSpeech
	audio    *fakeAudio
	store    *fakeStore
	notifier *fakeNotifier
	pipeline *Pipeline
}

func newHarness(t *testing.T, responses map[domain.AgentRole]string) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		dir:      dir,
		agents:   &fakeAgents{responses: responses, errs: map[domain.AgentRole]error{}},
		images:   &fakeImages{dir: dir},
		speech:   &fakeSpeech{dir: dir, duration: 42},
		audio:    &fakeAudio{},
		store:    &fakeStore{dir: dir},
		notifier: &fakeNotifier{},
	}
	h.pipeline = NewPipeline(PipelineDeps{
		Agents:            h.agents,
		Images:            h.images,
		Speech:            h.speech,
		Audio:             h.audio,
		Store:             h.store,
		Notifier:          h.notifier,
		PublicDir:         dir,
		Orientations:      []domain.Orientation{domain.OrientationPortrait},
		MaxShortsDuration: 60,
	})
	return h
}

const blackHolesScript = `{
  "title": "Black Holes Explained!",
  "segments": [
    {"speaker": "Cody", "text": "What happens at the event horizon?"},
    {"speaker": "Felippe", "text": "Time itself starts to behave strangely."}
  ]
}`

const twoScripts = `[
  {"title": "First Story", "segments": [{"speaker": "Cody", "text": "One."}]},
  {"title": "Second Story", "segments": [{"speaker": "Felippe", "text": "Two."}, {"speaker": "Cody", "text": "Three."}]}
]`

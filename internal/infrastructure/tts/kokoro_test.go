package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/logging"
)

type fakeProcessor struct {
	inputs    []string
	concatErr error
}

func (f *fakeProcessor) Concat(_ context.Context, inputs []string, output string) error {
	if f.concatErr != nil {
		// ffmpeg leaves a truncated file behind when it dies mid-write
		if err := os.WriteFile(output, []byte("partial"), 0o644); err != nil {
			return err
		}
		return f.concatErr
	}
	var joined []byte
	for _, in := range inputs {
		raw, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		joined = append(joined, raw...)
	}
	f.inputs = append([]string(nil), inputs...)
	return os.WriteFile(output, joined, 0o644)
}

func (f *fakeProcessor) Duration(context.Context, string) (float64, error) { return 3.5, nil }

func (f *fakeProcessor) FitDuration(context.Context, string, float64) (float64, error) {
	return 0, nil
}

func newKokoroServer(t *testing.T, failAt int32) (*httptest.Server, *[]string) {
	t.Helper()
	var voices []string
	var n atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key")
		}
		var body struct {
			Text  string `json:"text"`
			Voice string `json:"voice"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		voices = append(voices, body.Voice)
		if n.Add(1) == failAt {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body.Text + ";"))
	}))
	t.Cleanup(srv.Close)
	return srv, &voices
}

func testConfig(url string) config.KokoroConfig {
	return config.KokoroConfig{
		BaseURL: url,
		APIKey:  "secret",
		Voices:  map[string]string{"Cody": "pf_dora", "Felippe": "pm_alex"},
	}
}

var segments = []domain.Segment{
	{Speaker: domain.SpeakerCody, Text: "one"},
	{Speaker: domain.SpeakerFelippe, Text: "two"},
	{Speaker: domain.SpeakerCody, Text: "three"},
}

func TestSynthesizeScript(t *testing.T) {
	t.Parallel()

	srv, voices := newKokoroServer(t, 0)
	dir := t.TempDir()
	proc := &fakeProcessor{}
	k := NewKokoro(testConfig(srv.URL), dir, proc, logging.Discard())

	audio, err := k.SynthesizeScript(context.Background(), segments, "abc")
	if err != nil {
		t.Fatalf("SynthesizeScript error: %v", err)
	}
	if audio.FileName != "kokoro-abc.wav" || audio.Duration != 3.5 {
		t.Fatalf("unexpected audio: %+v", audio)
	}
	if got := strings.Join(*voices, ","); got != "pf_dora,pm_alex,pf_dora" {
		t.Fatalf("unexpected voices: %s", got)
	}

	raw, err := os.ReadFile(filepath.Join(dir, audio.FileName))
	if err != nil || string(raw) != "one;two;three;" {
		t.Fatalf("clips not joined in order: %q %v", raw, err)
	}
	for _, in := range proc.inputs {
		if !strings.HasPrefix(filepath.Base(in), "kokoro_") {
			t.Fatalf("unexpected clip name: %s", in)
		}
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 1 {
		t.Fatalf("intermediate clips left behind: %v", entries)
	}
}

func TestSynthesizeScriptGeneratesID(t *testing.T) {
	t.Parallel()

	srv, _ := newKokoroServer(t, 0)
	k := NewKokoro(testConfig(srv.URL), t.TempDir(), &fakeProcessor{}, logging.Discard())

	audio, err := k.SynthesizeScript(context.Background(), segments[:1], "")
	if err != nil {
		t.Fatalf("SynthesizeScript error: %v", err)
	}
	if !strings.HasPrefix(audio.FileName, "kokoro-") || len(audio.FileName) <= len("kokoro-.wav") {
		t.Fatalf("unexpected name: %s", audio.FileName)
	}
}

func TestSynthesizeScriptFailureRemovesClips(t *testing.T) {
	t.Parallel()

	srv, _ := newKokoroServer(t, 2)
	dir := t.TempDir()
	k := NewKokoro(testConfig(srv.URL), dir, &fakeProcessor{}, logging.Discard())

	_, err := k.SynthesizeScript(context.Background(), segments, "x")
	if err == nil || !strings.Contains(err.Error(), "segment 1") {
		t.Fatalf("expected segment failure, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("clips left behind after failure: %v", entries)
	}
}

func TestSynthesizeUnknownSpeaker(t *testing.T) {
	t.Parallel()

	k := NewKokoro(testConfig("http://unused"), t.TempDir(), &fakeProcessor{}, logging.Discard())
	if _, err := k.Synthesize(context.Background(), domain.Speaker("Bob"), "hi"); err == nil {
		t.Fatalf("expected error for unknown speaker")
	}
}

func TestSynthesizeScriptConcatFailureRemovesOutput(t *testing.T) {
	t.Parallel()

	srv, _ := newKokoroServer(t, 0)
	dir := t.TempDir()
	concatErr := errors.New("ffmpeg: exit status 1")
	k := NewKokoro(testConfig(srv.URL), dir, &fakeProcessor{concatErr: concatErr}, logging.Discard())

	_, err := k.SynthesizeScript(context.Background(), segments, "broken")
	if !errors.Is(err, concatErr) {
		t.Fatalf("expected concat error, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("partial output or clips left behind: %v", entries)
	}
}

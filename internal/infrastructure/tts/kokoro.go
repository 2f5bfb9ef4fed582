package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

// Kokoro implements ports.SpeechSynthesizer against a Kokoro HTTP endpoint.
type Kokoro struct {
	baseURL    string
	apiKey     string
	voices     map[domain.Speaker]string
	publicDir  string
	audio      ports.AudioProcessor
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.SpeechSynthesizer = (*Kokoro)(nil)

// NewKokoro builds the synthesizer. Clips are joined and measured by audio.
func NewKokoro(cfg config.KokoroConfig, publicDir string, audio ports.AudioProcessor, logger *slog.Logger) *Kokoro {
	if logger == nil {
		logger = slog.Default()
	}
	voices := make(map[domain.Speaker]string, len(cfg.Voices))
	for speaker, voice := range cfg.Voices {
		voices[domain.Speaker(speaker)] = voice
	}
	return &Kokoro{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		voices:     voices,
		publicDir:  publicDir,
		audio:      audio,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
}

// Synthesize renders one line and returns the clip name relative to the public directory.
func (k *Kokoro) Synthesize(ctx context.Context, speaker domain.Speaker, text string) (string, error) {
	voice, ok := k.voices[speaker]
	if !ok {
		return "", fmt.Errorf("no voice configured for speaker %q", speaker)
	}
	if k.baseURL == "" {
		return "", fmt.Errorf("kokoro client misconfigured")
	}

	payload, err := json.Marshal(map[string]string{"text": text, "voice": voice})
	if err != nil {
		return "", fmt.Errorf("marshal kokoro payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", k.apiKey)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("kokoro error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	name := fmt.Sprintf("kokoro_%s_%s.wav", strings.ToLower(string(speaker)), uuid.NewString())
	f, err := os.Create(filepath.Join(k.publicDir, name))
	if err != nil {
		return "", fmt.Errorf("create clip: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close clip: %w", err)
	}
	return name, nil
}

// SynthesizeScript renders every segment, joins the clips in order into
// kokoro-<id>.wav and removes the clips. An empty id gets a fresh UUID.
func (k *Kokoro) SynthesizeScript(ctx context.Context, segments []domain.Segment, id string) (domain.Audio, error) {
	if len(segments) == 0 {
		return domain.Audio{}, fmt.Errorf("no segments to synthesize")
	}
	if id == "" {
		id = uuid.NewString()
	}
	k.logger.Info("synthesizing script", "segments", len(segments))

	clips := make([]string, 0, len(segments))
	defer func() {
		for _, clip := range clips {
			if err := os.Remove(clip); err != nil && !errors.Is(err, os.ErrNotExist) {
				k.logger.Warn("remove clip", "path", clip, "error", err)
			}
		}
	}()

	for i, seg := range segments {
		name, err := k.Synthesize(ctx, seg.Speaker, seg.Text)
		if err != nil {
			return domain.Audio{}, fmt.Errorf("segment %d: %w", i, err)
		}
		clips = append(clips, filepath.Join(k.publicDir, name))
	}

	name := fmt.Sprintf("kokoro-%s.wav", id)
	output := filepath.Join(k.publicDir, name)
	if err := k.audio.Concat(ctx, clips, output); err != nil {
		os.Remove(output)
		return domain.Audio{}, err
	}

	duration, err := k.audio.Duration(ctx, output)
	if err != nil {
		os.Remove(output)
		return domain.Audio{}, err
	}

	k.logger.Info("script synthesized", "file", name, "duration", duration)
	return domain.Audio{FileName: name, Duration: duration}, nil
}

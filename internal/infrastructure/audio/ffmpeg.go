package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/ports"
)

const defaultMaxTempo = 1.5

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Processor implements ports.AudioProcessor with the ffmpeg and ffprobe binaries.
type Processor struct {
	ffmpeg   string
	ffprobe  string
	maxTempo float64
	run      runFunc
	logger   *slog.Logger
}

var _ ports.AudioProcessor = (*Processor)(nil)

// NewProcessor locates the binaries from configuration.
func NewProcessor(cfg config.AudioConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	maxTempo := cfg.MaxTempo
	if maxTempo <= 0 {
		maxTempo = defaultMaxTempo
	}
	return &Processor{
		ffmpeg:   orDefault(cfg.FFmpegPath, "ffmpeg"),
		ffprobe:  orDefault(cfg.FFprobePath, "ffprobe"),
		maxTempo: maxTempo,
		run:      runCommand,
		logger:   logger,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Concat joins inputs in order into output using the concat demuxer.
func (p *Processor) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat: no inputs")
	}

	lines := make([]string, 0, len(inputs))
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return fmt.Errorf("concat: %w", err)
		}
		lines = append(lines, fmt.Sprintf("file '%s'", strings.ReplaceAll(abs, "'", `'\''`)))
	}

	listFile := output + ".concat.txt"
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listFile)

	p.logger.Debug("concatenating audio", "inputs", len(inputs), "output", output)
	if _, err := p.run(ctx, p.ffmpeg, "-y", "-loglevel", "error", "-f", "concat", "-safe", "0", "-i", listFile, "-c", "copy", output); err != nil {
		return fmt.Errorf("concat audio: %w", err)
	}
	return nil
}

// Duration probes the container duration in seconds.
func (p *Processor) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx, p.ffprobe, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return d, nil
}

// FitDuration speeds up the file in place so it lasts at most maxSeconds.
// Files already within the limit are left untouched.
func (p *Processor) FitDuration(ctx context.Context, path string, maxSeconds float64) (float64, error) {
	current, err := p.Duration(ctx, path)
	if err != nil {
		return 0, err
	}
	if maxSeconds <= 0 || current <= maxSeconds {
		return current, nil
	}

	tempo := current / maxSeconds
	if tempo > p.maxTempo {
		return 0, fmt.Errorf("fit %s: needs %.2fx speed-up, limit is %.2fx", filepath.Base(path), tempo, p.maxTempo)
	}

	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".fit" + ext
	p.logger.Info("speeding up narration", "file", filepath.Base(path), "tempo", tempo)
	if _, err := p.run(ctx, p.ffmpeg, "-y", "-loglevel", "error", "-i", path, "-filter:a", fmt.Sprintf("atempo=%.4f", tempo), tmp); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("fit duration: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	return p.Duration(ctx, path)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

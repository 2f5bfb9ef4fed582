package usecase

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/slug"
)

// artifacts tracks the local files created while processing one script.
// Illustration tasks register files concurrently, hence the mutex.
type artifacts struct {
	mu    sync.Mutex
	paths []string
}

func (a *artifacts) track(path string) {
	if path == "" {
		return
	}
	a.mu.Lock()
	a.paths = append(a.paths, path)
	a.mu.Unlock()
}

// remove deletes every tracked file and forgets them. All files are attempted;
// failures are joined into the returned error.
func (a *artifacts) remove() error {
	a.mu.Lock()
	paths := a.paths
	a.paths = nil
	a.mu.Unlock()

	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// discard is the best-effort variant used when processing failed.
func (a *artifacts) discard(logger *slog.Logger) {
	a.mu.Lock()
	paths := a.paths
	a.paths = nil
	a.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("discard artifact", "path", path, "error", err)
		}
	}
}

// saveTranscript writes the segment texts, one per line, to <dir>/<slug>.txt.
func saveTranscript(dir string, script domain.Script) (string, error) {
	path := filepath.Join(dir, slug.FromTitle(script.Title)+".txt")

	lines := make([]string, 0, len(script.Segments))
	for _, seg := range script.Segments {
		lines = append(lines, seg.Text)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

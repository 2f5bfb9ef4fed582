package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

// mediaHost swaps public-directory names for hosted URLs when an uploader is set.
type mediaHost struct {
	publicDir string
	uploader  ports.MediaUploader
}

func newMediaHost(publicDir string, uploader ports.MediaUploader) *mediaHost {
	return &mediaHost{publicDir: publicDir, uploader: uploader}
}

func (m *mediaHost) enabled() bool {
	return m != nil && m.uploader != nil
}

func (m *mediaHost) host(ctx context.Context, name string) (string, error) {
	if !m.enabled() || name == "" {
		return name, nil
	}
	url, err := m.uploader.Upload(ctx, filepath.Join(m.publicDir, name), name)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return url, nil
}

func (m *mediaHost) hostAll(ctx context.Context, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		url, err := m.host(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, nil
}

// hostScript returns a copy of script whose audio and segment media point at hosted URLs.
func (m *mediaHost) hostScript(ctx context.Context, script domain.Script) (domain.Script, error) {
	out := script
	out.Segments = append([]domain.Segment(nil), script.Segments...)

	var err error
	if out.AudioSrc, err = m.host(ctx, script.AudioSrc); err != nil {
		return domain.Script{}, err
	}
	for i := range out.Segments {
		if out.Segments[i].MediaSrc, err = m.host(ctx, out.Segments[i].MediaSrc); err != nil {
			return domain.Script{}, err
		}
	}
	return out, nil
}

package usecase

import (
	"context"
	"fmt"

	"ScriptProducer/internal/domain"
)

// narrate synthesizes the ordered segments into one file and, when maxDuration is
// set, fits the result into that limit. The audio file is tracked as soon as it exists.
func (p *Pipeline) narrate(ctx context.Context, segments []domain.Segment, maxDuration float64, files *artifacts) (domain.Audio, error) {
	audio, err := p.speech.SynthesizeScript(ctx, segments, "")
	if err != nil {
		return domain.Audio{}, fmt.Errorf("synthesize speech: %w", err)
	}
	if audio.FileName == "" {
		return domain.Audio{}, fmt.Errorf("synthesize speech: no audio file returned")
	}
	path := p.artifactPath(audio.FileName)
	files.track(path)

	if maxDuration <= 0 || audio.Duration <= maxDuration {
		return audio, nil
	}
	if p.audio == nil {
		return domain.Audio{}, fmt.Errorf("narration lasts %.2fs, limit is %.2fs", audio.Duration, maxDuration)
	}

	p.logger.Info("fitting narration into duration limit", "duration", audio.Duration, "limit", maxDuration)
	fitted, err := p.audio.FitDuration(ctx, path, maxDuration)
	if err != nil {
		return domain.Audio{}, fmt.Errorf("fit narration: %w", err)
	}
	audio.Duration = fitted
	return audio, nil
}

// illustrate generates one image per segment concurrently. References are only
// assigned once every request succeeded.
func (p *Pipeline) illustrate(ctx context.Context, script *domain.Script, files *artifacts) error {
	media := make([]string, len(script.Segments))

	err := joinAll(ctx, p.pool, len(script.Segments), func(ctx context.Context, i int) error {
		src, err := p.images.Generate(ctx, script.Segments[i].Text, "")
		if err != nil {
			return fmt.Errorf("illustrate segment %d: %w", i, err)
		}
		if src != "" {
			files.track(p.artifactPath(src))
		}
		media[i] = src
		return nil
	})
	if err != nil {
		return err
	}

	for i, src := range media {
		script.Segments[i].MediaSrc = src
	}
	return nil
}

// generateThumbnails requests one thumbnail per enabled orientation and keeps
// the non-empty results in orientation order.
func (p *Pipeline) generateThumbnails(ctx context.Context, title string, files *artifacts) ([]string, error) {
	results := make([]string, len(p.orientations))

	err := joinAll(ctx, p.pool, len(p.orientations), func(ctx context.Context, i int) error {
		orientation := p.orientations[i]
		p.logger.Info("generating thumbnail", "orientation", orientation)
		src, err := p.images.GenerateThumbnail(ctx, title, orientation)
		if err != nil {
			return fmt.Errorf("thumbnail %s: %w", orientation, err)
		}
		if src != "" {
			files.track(p.artifactPath(src))
		}
		results[i] = src
		return nil
	})
	if err != nil {
		return nil, err
	}

	thumbnails := make([]string, 0, len(results))
	for _, src := range results {
		if src != "" {
			thumbnails = append(thumbnails, src)
		}
	}
	return thumbnails, nil
}

package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
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

var sizes = map[domain.Orientation]string{
	domain.OrientationPortrait:  "1024x1536",
	domain.OrientationLandscape: "1536x1024",
}

// Generator implements ports.ImageGenerator against the OpenAI images API
// and writes decoded images into the public directory.
type Generator struct {
	endpoint   string
	apiKey     string
	model      string
	style      string
	publicDir  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.ImageGenerator = (*Generator)(nil)

// NewGenerator builds an image generator from configuration.
func NewGenerator(cfg config.ImagesConfig, publicDir string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		style:      cfg.Style,
		publicDir:  publicDir,
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		logger:     logger,
	}
}

type imageRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	Number int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate illustrates one segment. An empty id gets a fresh UUID.
func (g *Generator) Generate(ctx context.Context, prompt string, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if g.style != "" {
		prompt = fmt.Sprintf("%s, %s", prompt, g.style)
	}
	return g.render(ctx, prompt, sizes[domain.OrientationPortrait], "image-"+id+".png")
}

// GenerateThumbnail renders a title card for the given orientation.
func (g *Generator) GenerateThumbnail(ctx context.Context, title string, orientation domain.Orientation) (string, error) {
	size, ok := sizes[orientation]
	if !ok {
		return "", fmt.Errorf("unknown orientation %q", orientation)
	}
	prompt := fmt.Sprintf("Eye-catching video thumbnail for a short titled %q. Bold composition, high contrast, no text.", title)
	name := fmt.Sprintf("thumbnail-%s-%s.png", strings.ToLower(string(orientation)), uuid.NewString())
	return g.render(ctx, prompt, size, name)
}

// render returns "" without error when the provider answered with no image.
func (g *Generator) render(ctx context.Context, prompt, size, name string) (string, error) {
	if g.apiKey == "" || g.endpoint == "" {
		return "", fmt.Errorf("image generator misconfigured")
	}

	payload, err := json.Marshal(imageRequest{Model: g.model, Prompt: prompt, Size: size, Number: 1})
	if err != nil {
		return "", fmt.Errorf("marshal image payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("image error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var decoded imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].B64JSON == "" {
		g.logger.Warn("image provider returned no data", "file", name)
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(decoded.Data[0].B64JSON)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.publicDir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	g.logger.Debug("image saved", "file", name, "bytes", len(raw))
	return name, nil
}

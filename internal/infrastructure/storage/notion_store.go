package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

const (
	notionVersion    = "2022-06-28"
	notionTextLimit  = 2000
	notionMaxPageLen = 100
)

// NotionStore persists scripts as pages of a Notion database.
type NotionStore struct {
	endpoint   string
	token      string
	databaseID string
	media      *mediaHost
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.ScriptStore = (*NotionStore)(nil)

// NewNotionStore targets databaseID; uploader may be nil.
func NewNotionStore(cfg config.NotionConfig, databaseID, publicDir string, uploader ports.MediaUploader, logger *slog.Logger) *NotionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotionStore{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		token:      cfg.Token,
		databaseID: databaseID,
		media:      newMediaHost(publicDir, uploader),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// SaveScript creates one page with the metadata as properties and the
// dialogue as paragraph blocks. Hosted images are embedded after their line.
func (s *NotionStore) SaveScript(ctx context.Context, script domain.Script, meta domain.Metadata, thumbnails []string, orientations []domain.Orientation, transcriptFile string) error {
	hosted, err := s.media.hostScript(ctx, script)
	if err != nil {
		return err
	}
	thumbs, err := s.media.hostAll(ctx, thumbnails)
	if err != nil {
		return err
	}

	orientationNames := make([]string, 0, len(orientations))
	for _, o := range orientations {
		orientationNames = append(orientationNames, string(o))
	}

	page := map[string]any{
		"parent": map[string]string{"database_id": s.databaseID},
		"properties": map[string]any{
			"Name":         map[string]any{"title": richText(meta.Title)},
			"Description":  map[string]any{"rich_text": richText(meta.Description)},
			"Hashtags":     map[string]any{"rich_text": richText(strings.Join(meta.Hashtags, " "))},
			"Tags":         multiSelect(meta.Tags),
			"Orientations": multiSelect(orientationNames),
			"Audio":        map[string]any{"rich_text": richText(hosted.AudioSrc)},
			"Thumbnails":   map[string]any{"rich_text": richText(strings.Join(thumbs, "\n"))},
			"Transcript":   map[string]any{"rich_text": richText(transcriptFile)},
		},
	}

	// the create call accepts at most notionMaxPageLen children; the rest are appended
	blocks := s.blocks(hosted)
	first, rest := splitBlocks(blocks)
	page["children"] = first

	var created struct {
		ID string `json:"id"`
	}
	if err := s.call(ctx, http.MethodPost, "/pages", page, &created); err != nil {
		return fmt.Errorf("create notion page: %w", err)
	}

	for len(rest) > 0 {
		var batch []map[string]any
		batch, rest = splitBlocks(rest)
		if err := s.call(ctx, http.MethodPatch, "/blocks/"+created.ID+"/children", map[string]any{"children": batch}, nil); err != nil {
			s.archive(ctx, created.ID)
			return fmt.Errorf("append blocks to notion page %s: %w", created.ID, err)
		}
	}

	s.logger.Info("script saved to notion", "page", created.ID, "title", meta.Title, "blocks", len(blocks))
	return nil
}

// archive hides a page left incomplete by a failed append.
func (s *NotionStore) archive(ctx context.Context, pageID string) {
	if err := s.call(ctx, http.MethodPatch, "/pages/"+pageID, map[string]any{"archived": true}, nil); err != nil {
		s.logger.Warn("archive incomplete notion page", "page", pageID, "error", err)
	}
}

func splitBlocks(blocks []map[string]any) (head, tail []map[string]any) {
	if len(blocks) <= notionMaxPageLen {
		return blocks, nil
	}
	return blocks[:notionMaxPageLen], blocks[notionMaxPageLen:]
}

func (s *NotionStore) blocks(script domain.Script) []map[string]any {
	blocks := make([]map[string]any, 0, len(script.Segments)*2)
	for _, seg := range script.Segments {
		blocks = append(blocks, map[string]any{
			"object":    "block",
			"type":      "paragraph",
			"paragraph": map[string]any{"rich_text": richText(string(seg.Speaker) + ": " + seg.Text)},
		})
		if s.media.enabled() && seg.MediaSrc != "" {
			blocks = append(blocks, map[string]any{
				"object": "block",
				"type":   "image",
				"image":  map[string]any{"type": "external", "external": map[string]string{"url": seg.MediaSrc}},
			})
		}
	}
	return blocks
}

type notionQueryResponse struct {
	Results []struct {
		Properties struct {
			Name struct {
				Title []struct {
					PlainText string `json:"plain_text"`
				} `json:"title"`
			} `json:"Name"`
		} `json:"properties"`
	} `json:"results"`
}

// RetrieveLatestScripts lists the newest pages; only titles are restored.
func (s *NotionStore) RetrieveLatestScripts(ctx context.Context, count int) ([]domain.Script, error) {
	if count <= 0 {
		return []domain.Script{}, nil
	}
	if count > notionMaxPageLen {
		count = notionMaxPageLen
	}

	query := map[string]any{
		"page_size": count,
		"sorts":     []map[string]string{{"timestamp": "created_time", "direction": "descending"}},
	}

	var resp notionQueryResponse
	if err := s.call(ctx, http.MethodPost, "/databases/"+s.databaseID+"/query", query, &resp); err != nil {
		return nil, fmt.Errorf("query notion database: %w", err)
	}

	scripts := make([]domain.Script, 0, len(resp.Results))
	for _, page := range resp.Results {
		var sb strings.Builder
		for _, t := range page.Properties.Name.Title {
			sb.WriteString(t.PlainText)
		}
		scripts = append(scripts, domain.Script{Title: sb.String()})
	}
	return scripts, nil
}

func (s *NotionStore) call(ctx context.Context, method, path string, body, out any) error {
	if s.token == "" || s.databaseID == "" || s.endpoint == "" {
		return fmt.Errorf("notion store misconfigured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal notion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notion error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode notion response: %w", err)
	}
	return nil
}

// richText splits s into chunks Notion accepts.
func richText(s string) []map[string]any {
	chunks := []map[string]any{}
	runes := []rune(s)
	for len(runes) > 0 {
		n := len(runes)
		if n > notionTextLimit {
			n = notionTextLimit
		}
		chunks = append(chunks, map[string]any{
			"type": "text",
			"text": map[string]string{"content": string(runes[:n])},
		})
		runes = runes[n:]
	}
	return chunks
}

func multiSelect(names []string) map[string]any {
	options := make([]map[string]string, 0, len(names))
	for _, name := range names {
		// commas are not allowed in option names
		options = append(options, map[string]string{"name": strings.ReplaceAll(name, ",", " ")})
	}
	return map[string]any{"multi_select": options}
}

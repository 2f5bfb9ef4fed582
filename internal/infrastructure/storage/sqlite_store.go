package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ScriptProducer/internal/domain"
	"ScriptProducer/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS scripts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	hashtags     TEXT NOT NULL DEFAULT '[]',
	tags         TEXT NOT NULL DEFAULT '[]',
	segments     TEXT NOT NULL,
	audio_src    TEXT NOT NULL DEFAULT '',
	thumbnails   TEXT NOT NULL DEFAULT '[]',
	orientations TEXT NOT NULL DEFAULT '[]',
	transcript   TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
)`

// SQLiteStore persists scripts into a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	media *mediaHost
	now   func() time.Time
}

var _ ports.ScriptStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (and migrates) the database at path. uploader may be nil,
// in which case media references are stored as public-directory names.
func OpenSQLiteStore(ctx context.Context, path, publicDir string, uploader ports.MediaUploader) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &SQLiteStore{
		db:    db,
		media: newMediaHost(publicDir, uploader),
		now:   time.Now,
	}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveScript inserts one row per script.
func (s *SQLiteStore) SaveScript(ctx context.Context, script domain.Script, meta domain.Metadata, thumbnails []string, orientations []domain.Orientation, transcriptFile string) error {
	hosted, err := s.media.hostScript(ctx, script)
	if err != nil {
		return err
	}
	thumbs, err := s.media.hostAll(ctx, thumbnails)
	if err != nil {
		return err
	}

	segments, err := json.Marshal(hosted.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	query, args, err := sq.Insert("scripts").
		Columns("title", "description", "hashtags", "tags", "segments", "audio_src", "thumbnails", "orientations", "transcript", "created_at").
		Values(meta.Title, meta.Description, mustJSON(meta.Hashtags), mustJSON(meta.Tags), string(segments), hosted.AudioSrc,
			mustJSON(thumbs), mustJSON(orientations), transcriptFile, s.now().UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

// RetrieveLatestScripts returns up to count scripts, newest first.
func (s *SQLiteStore) RetrieveLatestScripts(ctx context.Context, count int) ([]domain.Script, error) {
	if count <= 0 {
		return []domain.Script{}, nil
	}

	query, args, err := sq.Select("title", "segments", "audio_src").
		From("scripts").
		OrderBy("id DESC").
		Limit(uint64(count)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scripts: %w", err)
	}

	result := make([]domain.Script, 0, count)
	for rows.Next() {
		var (
			script   domain.Script
			segments string
		)
		if err := rows.Scan(&script.Title, &segments, &script.AudioSrc); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan script: %w", err)
		}
		if err := json.Unmarshal([]byte(segments), &script.Segments); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode segments of %q: %w", script.Title, err)
		}
		result = append(result, script)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}

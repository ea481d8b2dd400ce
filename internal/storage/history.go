package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// History records which videos were processed and when each channel was
// last checked, so repeated runs skip finished work.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the SQLite history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initHistorySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error { return h.db.Close() }

// tsLayout sorts lexically in time order.
const tsLayout = "2006-01-02T15:04:05.000000Z"

var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS processed_videos (
		video_id     TEXT PRIMARY KEY,
		channel      TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		path         TEXT,
		method       TEXT,
		status       TEXT NOT NULL,
		confidence   REAL NOT NULL DEFAULT 0,
		processed_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processed_channel ON processed_videos (channel, processed_at)`,
	`CREATE TABLE IF NOT EXISTS channels (
		handle         TEXT PRIMARY KEY,
		last_processed TEXT NOT NULL
	)`,
}

func initHistorySchema(db *sql.DB) error {
	for _, stmt := range historySchema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// MarkProcessed upserts p. A zero ProcessedAt is set to now.
func (h *History) MarkProcessed(ctx context.Context, p engine.ProcessedVideo) error {
	if p.VideoID == "" {
		return errors.New("history: video id is required")
	}
	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = now()
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO processed_videos (video_id, channel, title, path, method, status, confidence, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
		   channel = excluded.channel, title = excluded.title, path = excluded.path,
		   method = excluded.method, status = excluded.status,
		   confidence = excluded.confidence, processed_at = excluded.processed_at`,
		p.VideoID, strings.TrimPrefix(p.Channel, "@"), p.Title, p.Path, p.Method, p.Status,
		p.Confidence, p.ProcessedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("history: mark %s: %w", p.VideoID, err)
	}
	return nil
}

// IsProcessed reports whether videoID has a history entry.
func (h *History) IsProcessed(ctx context.Context, videoID string) (bool, error) {
	var n int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_videos WHERE video_id = ?`, videoID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("history: lookup %s: %w", videoID, err)
	}
	return n > 0, nil
}

// Recent returns the latest entries, newest first, optionally for one channel.
func (h *History) Recent(ctx context.Context, channel string, limit int) ([]engine.ProcessedVideo, error) {
	if limit <= 0 || limit > 500 {
		limit = 20
	}
	const cols = `SELECT video_id, channel, title, COALESCE(path, ''), COALESCE(method, ''), status, confidence, processed_at FROM processed_videos`

	var (
		rows *sql.Rows
		err  error
	)
	if channel != "" {
		rows, err = h.db.QueryContext(ctx, cols+` WHERE channel = ? ORDER BY processed_at DESC LIMIT ?`,
			strings.TrimPrefix(channel, "@"), limit)
	} else {
		rows, err = h.db.QueryContext(ctx, cols+` ORDER BY processed_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []engine.ProcessedVideo
	for rows.Next() {
		var (
			p  engine.ProcessedVideo
			ts string
		)
		if err := rows.Scan(&p.VideoID, &p.Channel, &p.Title, &p.Path, &p.Method, &p.Status, &p.Confidence, &ts); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		p.ProcessedAt, _ = time.Parse(tsLayout, ts)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetLastProcessed records when channel was last checked.
func (h *History) SetLastProcessed(ctx context.Context, channel string, at time.Time) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO channels (handle, last_processed) VALUES (?, ?)
		 ON CONFLICT(handle) DO UPDATE SET last_processed = excluded.last_processed`,
		strings.TrimPrefix(channel, "@"), at.UTC().Format(tsLayout))
	if err != nil {
		return fmt.Errorf("history: set last processed %s: %w", channel, err)
	}
	return nil
}

// LastProcessed returns when channel was last checked; ok is false if never.
func (h *History) LastProcessed(ctx context.Context, channel string) (at time.Time, ok bool, err error) {
	var ts string
	err = h.db.QueryRowContext(ctx, `SELECT last_processed FROM channels WHERE handle = ?`,
		strings.TrimPrefix(channel, "@")).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("history: last processed %s: %w", channel, err)
	}
	at, err = time.Parse(tsLayout, ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("history: parse %q: %w", ts, err)
	}
	return at, true, nil
}

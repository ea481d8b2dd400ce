package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Archive keeps every analysis in Postgres for querying across runs.
type Archive struct {
	pool *pgxpool.Pool
}

// ConnectArchive creates a pgx pool and runs the embedded migrations.
func ConnectArchive(ctx context.Context, databaseURL string) (*Archive, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	a := &Archive{pool: pool}
	if err := a.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("analysis archive connected", slog.String("addr", config.ConnConfig.Host))
	return a, nil
}

func (a *Archive) Close() { a.pool.Close() }

// migrations returns the embedded schema files in apply order.
func migrations() ([]string, error) {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	names, err := migrations()
	if err != nil {
		return err
	}
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Release()

	for _, name := range names {
		data, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := conn.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", name, err)
		}
		slog.Debug("migration applied", slog.String("file", name))
	}
	return nil
}

// SaveAnalysis upserts va keyed by video ID.
func (a *Archive) SaveAnalysis(ctx context.Context, va engine.VideoAnalysis) error {
	rec, err := json.Marshal(va.Record)
	if err != nil {
		return fmt.Errorf("archive: encode record: %w", err)
	}
	var published *time.Time
	if !va.Video.Published.IsZero() {
		published = &va.Video.Published
	}
	analyzedAt := va.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = now()
	}
	topics := va.Record.MainTopics
	if topics == nil {
		topics = []string{}
	}

	_, err = a.pool.Exec(ctx,
		`INSERT INTO podcast_analyses (video_id, channel, title, published_at, duration_seconds, status, method,
		   confidence, content_category, transcript_method, transcript_chars, analysis, summary, analyzed_at, topics)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (video_id) DO UPDATE SET
		   status = EXCLUDED.status, method = EXCLUDED.method, confidence = EXCLUDED.confidence,
		   content_category = EXCLUDED.content_category, transcript_method = EXCLUDED.transcript_method,
		   transcript_chars = EXCLUDED.transcript_chars, analysis = EXCLUDED.analysis,
		   summary = EXCLUDED.summary, analyzed_at = EXCLUDED.analyzed_at, topics = EXCLUDED.topics`,
		va.Video.ID, strings.TrimPrefix(va.Video.Handle, "@"), va.Video.Title, published, va.Video.Duration,
		string(va.Status), va.Method, va.Record.Confidence, va.Record.ContentCategory,
		va.TranscriptMethod, va.TranscriptChars, rec, va.Summary, analyzedAt, topics,
	)
	if err != nil {
		return fmt.Errorf("archive: save %s: %w", va.Video.ID, err)
	}
	return nil
}

// RecentAnalyses returns up to limit analyses, newest first, optionally for one channel.
func (a *Archive) RecentAnalyses(ctx context.Context, channel string, limit int) ([]engine.VideoAnalysis, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	const query = `SELECT video_id, channel, title, published_at, duration_seconds, status, method,
		   transcript_method, transcript_chars, analysis, summary, analyzed_at
		 FROM podcast_analyses
		 WHERE $1 = '' OR channel = $1
		 ORDER BY analyzed_at DESC LIMIT $2`

	rows, err := a.pool.Query(ctx, query, strings.TrimPrefix(channel, "@"), limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("archive: scan: %w", err)
	}
	return out, nil
}

func scanAnalysis(row pgx.CollectableRow) (engine.VideoAnalysis, error) {
	var (
		va        engine.VideoAnalysis
		published *time.Time
		status    string
		rec       []byte
	)
	err := row.Scan(&va.Video.ID, &va.Video.Handle, &va.Video.Title, &published, &va.Video.Duration,
		&status, &va.Method, &va.TranscriptMethod, &va.TranscriptChars, &rec, &va.Summary, &va.AnalyzedAt)
	if err != nil {
		return va, err
	}
	if published != nil {
		va.Video.Published = *published
	}
	va.Status = analysis.Status(status)
	if err := json.Unmarshal(rec, &va.Record); err != nil {
		return va, fmt.Errorf("decode record %s: %w", va.Video.ID, err)
	}
	return va, nil
}

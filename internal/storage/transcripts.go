// Package storage persists transcripts on disk, the processing history in
// SQLite and, optionally, analyses in Postgres.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

const (
	transcriptMarker = "## Transcript\n\n"
	metadataMarker   = "**Metadata:**\n```json\n"
)

var now = time.Now

// TranscriptStore keeps one Markdown file per video:
// <dir>/<handle>_<YYYYMMDD>_<videoID>.md.
type TranscriptStore struct {
	dir string
}

// NewTranscriptStore creates dir if needed.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("transcripts: mkdir %s: %w", dir, err)
	}
	return &TranscriptStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *TranscriptStore) Dir() string { return s.dir }

// Path returns where the transcript of v is (or would be) stored.
func (s *TranscriptStore) Path(v engine.Video) string {
	handle := strings.TrimPrefix(v.Handle, "@")
	if handle == "" {
		handle = "unknown"
	}
	id := v.ID
	if id == "" {
		id = "unknown"
	}
	date := "unknown"
	if !v.Published.IsZero() {
		date = v.Published.Format("20060102")
	}
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s.md", handle, date, id))
}

// Exists reports whether a transcript of v is already stored.
func (s *TranscriptStore) Exists(v engine.Video) bool {
	_, err := os.Stat(s.Path(v))
	return err == nil
}

// Save writes the transcript of v and returns the file path.
func (s *TranscriptStore) Save(v engine.Video, transcript string) (string, error) {
	path := s.Path(v)
	content, err := formatTranscript(v, transcript)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return "", fmt.Errorf("transcripts: write %s: %w", path, err)
	}
	slog.Info("stored transcript", slog.String("path", path), slog.Int("chars", len(transcript)))
	return path, nil
}

// Load reads a stored transcript. Files without a metadata block (plain
// text or Markdown from elsewhere) load with an empty Video.
func Load(path string) (engine.Video, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Video{}, "", fmt.Errorf("transcripts: read %s: %w", path, err)
	}
	v, text := parseTranscript(string(data))
	return v, text, nil
}

// List returns stored transcript paths, newest first. A non-empty channel
// keeps only that channel's files.
func (s *TranscriptStore) List(channel string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("transcripts: list %s: %w", s.dir, err)
	}
	prefix := ""
	if channel != "" {
		prefix = strings.TrimPrefix(channel, "@") + "_"
	}

	type file struct {
		path  string
		mtime time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(s.dir, e.Name()), info.ModTime()})
	}
	slices.SortStableFunc(files, func(a, b file) int { return b.mtime.Compare(a.mtime) })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

func formatTranscript(v engine.Video, transcript string) (string, error) {
	meta, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("transcripts: encode metadata: %w", err)
	}
	title := v.Title
	if title == "" {
		title = "Unknown Title"
	}
	channel := v.Channel
	if channel == "" {
		channel = "Unknown Channel"
	}
	published := "Unknown Date"
	if !v.Published.IsZero() {
		published = v.Published.Format("January 02, 2006")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Channel:** %s (@%s)  \n", channel, strings.TrimPrefix(v.Handle, "@"))
	fmt.Fprintf(&b, "**Duration:** %s  \n", fileDuration(v.Duration))
	fmt.Fprintf(&b, "**Published:** %s  \n", published)
	fmt.Fprintf(&b, "**Video ID:** %s  \n", v.ID)
	fmt.Fprintf(&b, "**URL:** %s\n\n", v.WatchURL())
	fmt.Fprintf(&b, "**Extracted:** %s\n\n", now().UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString("---\n\n")
	b.WriteString(transcriptMarker)
	b.WriteString(strings.TrimSpace(transcript))
	b.WriteString("\n\n---\n\n")
	b.WriteString(metadataMarker)
	b.Write(meta)
	b.WriteString("\n```\n")
	return b.String(), nil
}

func parseTranscript(content string) (engine.Video, string) {
	start := strings.Index(content, transcriptMarker)
	if start < 0 {
		return engine.Video{}, strings.TrimSpace(content)
	}
	start += len(transcriptMarker)

	metaStart := strings.Index(content, metadataMarker)
	if metaStart < start {
		return engine.Video{}, strings.TrimSpace(content[start:])
	}
	text := strings.TrimSpace(content[start:metaStart])
	text = strings.TrimSpace(strings.TrimSuffix(text, "---"))

	metaStart += len(metadataMarker)
	metaEnd := strings.Index(content[metaStart:], "\n```")
	if metaEnd < 0 {
		return engine.Video{}, text
	}
	v, err := decodeMetadata([]byte(content[metaStart : metaStart+metaEnd]))
	if err != nil {
		slog.Warn("transcript metadata unreadable", slog.Any("error", err))
	}
	return v, text
}

// storedMeta accepts upload dates as RFC 3339, YYYY-MM-DD or YYYYMMDD,
// so files written by older tools still load.
type storedMeta struct {
	engine.Video
	Published string `json:"upload_date"`
}

var uploadDateLayouts = []string{time.RFC3339, "2006-01-02", "20060102"}

func decodeMetadata(data []byte) (engine.Video, error) {
	var m storedMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return engine.Video{}, fmt.Errorf("decode metadata: %w", err)
	}
	v := m.Video
	v.Handle = strings.TrimPrefix(v.Handle, "@")
	if m.Published == "" {
		return v, nil
	}
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, m.Published); err == nil {
			v.Published = t
			return v, nil
		}
	}
	return v, errors.New("unrecognised upload_date " + m.Published)
}

// fileDuration renders seconds as "1h 5m", "4m 10s" or "42s".
func fileDuration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

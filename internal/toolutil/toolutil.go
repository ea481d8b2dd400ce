// Package toolutil provides shared helpers for the go_podcast MCP tools.
package toolutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
)

// ClampLimit returns def for n <= 0 and caps n at maxN.
func ClampLimit(n, def, maxN int) int {
	if n <= 0 {
		return def
	}
	return min(n, maxN)
}

// NormLangs trims language codes; empty input means the configured defaults.
func NormLangs(langs []string) []string {
	var out []string
	for _, l := range langs {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return engine.Cfg.TranscriptLangs
	}
	return out
}

// ResolveVideoID accepts a URL or a bare video ID.
func ResolveVideoID(s string) (string, error) {
	id := sources.ExtractVideoID(s)
	if id == "" {
		return "", fmt.Errorf("not a YouTube video URL or ID: %q", s)
	}
	return id, nil
}

// fetchTranscript is swapped in tests.
var fetchTranscript = sources.FetchTranscript

// ResolveTranscript returns the transcript text for a tool call: text when
// given, otherwise the fetched captions of video.
func ResolveTranscript(ctx context.Context, text, video, title string) (engine.Video, string, error) {
	v := engine.Video{Title: strings.TrimSpace(title)}
	if strings.TrimSpace(text) != "" {
		if video != "" {
			v.ID = sources.ExtractVideoID(video)
		}
		return v, strings.TrimSpace(text), nil
	}
	if video == "" {
		return v, "", errors.New("text or video is required")
	}
	id, err := ResolveVideoID(video)
	if err != nil {
		return v, "", err
	}
	v.ID = id
	tr, err := fetchTranscript(ctx, id, engine.Cfg.TranscriptLangs)
	if err != nil {
		return v, "", err
	}
	return v, tr.Text, nil
}

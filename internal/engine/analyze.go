package engine

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

// analyzer is rebuilt by Init from Config.Analysis.
var analyzer = analysis.NewAnalyzer(analysis.DefaultConfig())

// AnalyzeTranscript analyses text for v, asking the configured LLM for each
// segment and falling back to heuristic extraction where it fails.
func AnalyzeTranscript(ctx context.Context, v Video, text string) VideoAnalysis {
	return analyzeTranscript(ctx, v, text, true)
}

// AnalyzeHeuristic analyses text with pattern extraction only.
func AnalyzeHeuristic(ctx context.Context, v Video, text string) VideoAnalysis {
	return analyzeTranscript(ctx, v, text, false)
}

func analyzeTranscript(ctx context.Context, v Video, text string, useLLM bool) VideoAnalysis {
	chars := utf8.RuneCountInString(text)
	if limit := cfg.MaxTranscriptChars; limit > 0 && chars > limit {
		slog.Debug("analyze: transcript truncated",
			slog.String("video", v.ID), slog.Int("chars", chars), slog.Int("limit", limit))
		text = TruncateAtWord(text, limit)
	}

	var fn analysis.SegmentFunc
	mode := analysis.MethodHeuristic
	if useLLM {
		if fn = SegmentAnalyzer(ctx, v); fn != nil {
			mode = analysis.MethodLLM
		}
	}

	key := CacheKey("analysis", mode, v.ID, text)
	if cached, ok := CacheLoadJSON[VideoAnalysis](ctx, key); ok {
		cached.Video = v
		return cached
	}

	out := analyzer.AnalyzeWith(text, fn)
	metrics.Analyses.Add(1)
	if out.Status != analysis.StatusOK {
		metrics.AnalysesDegraded.Add(1)
		slog.Warn("analyze: degraded",
			slog.String("video", v.ID),
			slog.String("status", string(out.Status)),
			slog.Any("fallbacks", out.Fallbacks),
			slog.Int("errors", len(out.Errors)))
	}

	va := VideoAnalysis{
		Video:           v,
		Record:          out.Record,
		Status:          out.Status,
		Method:          out.Method,
		Segments:        out.Segments,
		Fallbacks:       out.Fallbacks,
		Errors:          out.Errors,
		TranscriptChars: chars,
		AnalyzedAt:      time.Now().UTC(),
	}
	if out.Status != analysis.StatusFailed && len(out.Errors) == 0 {
		CacheStoreJSON(ctx, key, va)
	}
	return va
}

package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/report"
)

// SummaryResult describes one written summary file.
type SummaryResult struct {
	Path     string
	Style    string
	Method   string // llm | template
	Analysis engine.VideoAnalysis
}

// SummaryFileName returns "<slug>-<style>-<YYYYMMDD>.md".
func SummaryFileName(title, style string, day time.Time) string {
	return engine.Slugify(title) + "-" + style + "-" + day.Format("20060102") + ".md"
}

// SummarizeFile analyses the transcript at path, writes a narrative summary
// in style to outDir and returns where it went.
func SummarizeFile(ctx context.Context, path, outDir, style string) (SummaryResult, error) {
	va, text, err := AnalyzeFile(ctx, path)
	if err != nil {
		return SummaryResult{}, err
	}
	style = engine.NormalizeStyle(style)
	summary, method := engine.Summarize(ctx, va.Video, va.Record, text, style)
	va.Summary = summary

	out, err := report.Write(outDir, SummaryFileName(va.Video.Title, style, time.Now()), summary)
	if err != nil {
		return SummaryResult{}, err
	}
	slog.Info("summary written",
		slog.String("source", path),
		slog.String("path", out),
		slog.String("style", style),
		slog.String("method", method))
	return SummaryResult{Path: out, Style: style, Method: method, Analysis: va}, nil
}

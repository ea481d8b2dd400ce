// Package report renders analyses as Markdown, HTML and PDF documents and
// delivers them by e-mail.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

var now = time.Now

// Per-section limits in the rendered report.
const (
	showAlpha     = 3
	showInsights  = 5
	showQuotes    = 3
	showTakeaways = 5
	showTopics    = 5
)

// DigestFileName returns the default digest file name for day t.
func DigestFileName(t time.Time) string {
	return "podcast-digest-" + t.Format("2006-01-02") + ".md"
}

// Digest renders a run report as one Markdown document.
func Digest(r engine.RunReport) string {
	sections := []string{
		digestHeader(r),
		processingStatus(r),
		"---",
		insightsSection(r.Analyses),
		"---",
		statistics(r.Analyses),
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// Plan renders a dry run: the videos a real run would process, per channel.
func Plan(r engine.RunReport) string {
	lines := []string{"# Podcast Digest Plan (dry run)", ""}
	for _, c := range r.Channels {
		if len(c.Errors) > 0 {
			lines = append(lines, fmt.Sprintf("- **@%s** - %s ❌", c.Handle, c.Errors[0]))
			continue
		}
		lines = append(lines, fmt.Sprintf("- **@%s** - %d video(s)", c.Handle, c.Videos))
		for _, v := range r.Videos {
			if v.Handle != c.Handle {
				continue
			}
			lines = append(lines, fmt.Sprintf("  - \"%s\" (%s, %s) %s",
				v.Title, displayDate(v.Published), displayDuration(v.Duration), v.WatchURL()))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func digestHeader(r engine.RunReport) string {
	analyzed := 0
	for _, a := range r.Analyses {
		if a.Record.Confidence > 0 {
			analyzed++
		}
	}
	var b strings.Builder
	b.WriteString("# Podcast Research Summary\n")
	fmt.Fprintf(&b, "**Generated:** %s  \n", now().UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "**Channels Processed:** %d  \n", len(r.Channels))
	fmt.Fprintf(&b, "**Videos Analyzed:** %d", analyzed)
	return b.String()
}

func statusIcon(confidence float64) string {
	switch {
	case confidence > 0.5:
		return "✓"
	case confidence > 0:
		return "⚠️"
	}
	return "❌"
}

func processingStatus(r engine.RunReport) string {
	lines := []string{"## Processing Status"}
	for _, a := range r.Analyses {
		lines = append(lines, fmt.Sprintf("- [x] **@%s** - \"%s\" (%s) %s",
			a.Video.Handle, a.Video.Title, displayDate(a.Video.Published), statusIcon(a.Record.Confidence)))
	}
	for _, c := range r.Channels {
		if len(c.Errors) == 0 && c.Videos > 0 {
			continue
		}
		reason := "no recent videos"
		if len(c.Errors) > 0 {
			reason = c.Errors[0]
		}
		lines = append(lines, fmt.Sprintf("- [ ] **@%s** - %s ❌", c.Handle, reason))
	}
	return strings.Join(lines, "\n")
}

func insightsSection(analyses []engine.VideoAnalysis) string {
	parts := []string{"## 🎯 Key Insights & Alpha"}
	for _, a := range analyses {
		if a.Record.Confidence <= 0 {
			continue
		}
		parts = append(parts, videoInsights(a))
	}
	return strings.Join(parts, "\n\n")
}

// videoInsights renders the per-video block shared by the digest and the
// single-video summary.
func videoInsights(a engine.VideoAnalysis) string {
	v, rec := a.Video, a.Record
	lines := []string{
		fmt.Sprintf("### @%s - \"%s\"", v.Handle, v.Title),
		fmt.Sprintf("**Duration:** %s | **Published:** %s", displayDuration(v.Duration), displayDate(v.Published)),
	}
	if v.ID != "" {
		lines = append(lines, fmt.Sprintf("**Link:** %s", v.WatchURL()))
	}
	if rec.ContentCategory != "" {
		lines = append(lines, fmt.Sprintf("**Category:** %s | **Confidence:** %.2f", rec.ContentCategory, rec.Confidence))
	}
	lines = append(lines, "")

	if items := head(rec.MainAlpha, showAlpha); len(items) > 0 {
		lines = append(lines, "#### 🔥 Main Alpha")
		for _, s := range items {
			lines = append(lines, fmt.Sprintf("- **%s**", s))
		}
		lines = append(lines, "")
	}
	if items := head(rec.KeyInsights, showInsights); len(items) > 0 {
		lines = append(lines, "#### 💡 Key Insights")
		for i, s := range items {
			lines = append(lines, fmt.Sprintf("%d. **%s**", i+1, s))
		}
		lines = append(lines, "")
	}
	if items := head(rec.KeyQuotes, showQuotes); len(items) > 0 {
		lines = append(lines, "#### 📝 Key Quotes")
		for _, s := range items {
			lines = append(lines, fmt.Sprintf("> \"%s\"", s))
		}
		lines = append(lines, "")
	}
	if items := head(rec.ActionableTakeaways, showTakeaways); len(items) > 0 {
		lines = append(lines, "#### 🚀 Actionable Takeaways")
		for _, s := range items {
			lines = append(lines, "- "+s)
		}
		lines = append(lines, "")
	}
	if topics := head(rec.MainTopics, showTopics); len(topics) > 0 {
		lines = append(lines, "**Topics:** "+strings.Join(topics, " • "), "")
	}
	if a.Summary != "" {
		lines = append(lines, "#### 📖 Summary", "", strings.TrimSpace(a.Summary), "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func statistics(analyses []engine.VideoAnalysis) string {
	var total, ok, insights, alpha, takeaways int
	for _, a := range analyses {
		total += a.Video.Duration
		if a.Record.Confidence > 0 {
			ok++
			insights += len(a.Record.KeyInsights)
			alpha += len(a.Record.MainAlpha)
			takeaways += len(a.Record.ActionableTakeaways)
		}
	}
	rate := 0.0
	if len(analyses) > 0 {
		rate = float64(ok) / float64(len(analyses)) * 100
	}
	var b strings.Builder
	b.WriteString("## 📊 Summary Statistics\n")
	fmt.Fprintf(&b, "- **Total Content Analyzed:** %s\n", displayDuration(total))
	fmt.Fprintf(&b, "- **Key Insights Extracted:** %d\n", insights)
	fmt.Fprintf(&b, "- **Actionable Alpha Points:** %d\n", alpha)
	fmt.Fprintf(&b, "- **Takeaways Identified:** %d\n", takeaways)
	fmt.Fprintf(&b, "- **Success Rate:** %d/%d videos (%.0f%%)\n", ok, len(analyses), rate)
	fmt.Fprintf(&b, "- **Generated:** %s", now().UTC().Format("2006-01-02 at 15:04 UTC"))
	return b.String()
}

// VideoSummary renders one analysis as a standalone Markdown document.
func VideoSummary(a engine.VideoAnalysis) string {
	title := a.Video.Title
	if title == "" {
		title = "Podcast Summary"
	}
	category := a.Record.ContentCategory
	if category == "" {
		category = "general"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Channel:** @%s  \n", a.Video.Handle)
	fmt.Fprintf(&b, "**Duration:** %s  \n", displayDuration(a.Video.Duration))
	fmt.Fprintf(&b, "**Published:** %s  \n", displayDate(a.Video.Published))
	fmt.Fprintf(&b, "**Generated:** %s\n\n", now().UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString("---\n\n")
	b.WriteString(videoInsights(a))
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "**Analysis Confidence:** %.2f  \n", a.Record.Confidence)
	fmt.Fprintf(&b, "**Content Category:** %s\n", category)
	if a.Status != analysis.StatusOK && a.Status != "" {
		fmt.Fprintf(&b, "\n*Analysis %s (%s).*\n", a.Status, a.Method)
	}
	return b.String()
}

// Write stores content as dir/name, creating dir, and returns the path.
func Write(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("report: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	slog.Info("report written", slog.String("path", path), slog.Int("bytes", len(content)))
	return path, nil
}

func displayDuration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}
	return engine.FormatDuration(seconds)
}

func displayDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown Date"
	}
	return t.Format("Jan 02, 2006")
}

func head(items []string, n int) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

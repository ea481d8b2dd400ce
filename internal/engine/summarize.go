package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

// Summary methods.
const (
	SummaryLLM      = "llm"
	SummaryTemplate = "template"
)

// NormalizeStyle maps an empty or unknown style to blog.
func NormalizeStyle(style string) string {
	switch s := strings.ToLower(strings.TrimSpace(style)); s {
	case StyleInsights, StyleBrief:
		return s
	}
	return StyleBlog
}

// Summarize writes a narrative summary of v in the given style. The LLM writes it
// from the transcript when configured; otherwise, or when the call fails, the
// summary is assembled from rec.
func Summarize(ctx context.Context, v Video, rec analysis.Record, transcript, style string) (summary, method string) {
	style = NormalizeStyle(style)
	metrics.Summaries.Add(1)

	if LLMEnabled() && strings.TrimSpace(transcript) != "" {
		prompt := fmt.Sprintf(summaryPrompts[style], titleOf(v), channelOf(v), durationOf(v),
			TruncateAtWord(transcript, summaryTranscriptLimit()))
		out, err := CallLLM(ctx, LLMRequest{
			System:      summarySystem,
			Prompt:      prompt,
			Temperature: 0.7,
			MaxTokens:   4096,
		})
		if err == nil && strings.TrimSpace(out) != "" {
			return out, SummaryLLM
		}
		if err != nil && !errors.Is(err, ErrLLMDisabled) {
			slog.Warn("summarize: llm failed, using template",
				slog.String("video", v.ID), slog.Any("error", err))
		}
	}
	return TemplateSummary(v, rec, style), SummaryTemplate
}

// summaryTranscriptLimit keeps the summary prompt inside the analysis budget.
func summaryTranscriptLimit() int {
	if cfg.MaxTranscriptChars > 0 {
		return cfg.MaxTranscriptChars
	}
	return 50000
}

// TemplateSummary renders a summary of rec without a model.
func TemplateSummary(v Video, rec analysis.Record, style string) string {
	switch NormalizeStyle(style) {
	case StyleInsights:
		return insightsTemplate(v, rec)
	case StyleBrief:
		return briefTemplate(v, rec)
	}
	return blogTemplate(v, rec)
}

func blogTemplate(v Video, rec analysis.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", titleOf(v))

	topics := headN(rec.MainTopics, 3)
	if len(topics) > 0 && topics[0] != "general" {
		fmt.Fprintf(&sb, "In this %s episode from %s, the discussion explores %s.",
			durationOf(v), channelOf(v), strings.Join(topicLabels(topics), ", "))
	} else {
		fmt.Fprintf(&sb, "In this %s episode from %s, the hosts dive into current topics and trends.",
			durationOf(v), channelOf(v))
	}
	if alpha := headN(rec.MainAlpha, 2); len(alpha) > 0 {
		sb.WriteString(" The central argument: " + strings.Join(alpha, " "))
	}
	sb.WriteString("\n\n")

	if insights := headN(rec.KeyInsights, 4); len(insights) > 0 {
		sb.WriteString("The conversation reveals several important insights:\n\n")
		for _, in := range insights {
			fmt.Fprintf(&sb, "- **%s**\n", in)
		}
		sb.WriteString("\n")
	}
	if quotes := headN(rec.KeyQuotes, 3); len(quotes) > 0 {
		sb.WriteString("## Notable Highlights\n\n")
		for _, q := range quotes {
			fmt.Fprintf(&sb, "> \"%s\"\n\n", strings.Trim(q, `"`))
		}
	}
	if takeaways := headN(rec.ActionableTakeaways, 4); len(takeaways) > 0 {
		sb.WriteString("## Key Takeaways\n\n")
		for i, t := range takeaways {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
		}
		sb.WriteString("\n")
	}
	if len(topics) > 0 && topics[0] != "general" {
		fmt.Fprintf(&sb, "This episode provides useful perspectives on %s.\n", topicLabel(topics[0]))
	}
	return sb.String()
}

func insightsTemplate(v Video, rec analysis.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Key Insights: %s\n\n", titleOf(v))
	fmt.Fprintf(&sb, "**Source:** %s (%s)\n\n", channelOf(v), durationOf(v))
	sb.WriteString("## Strategic Insights\n\n")
	var insights []string
	insights = append(insights, headN(rec.MainAlpha, 2)...)
	insights = append(insights, headN(rec.KeyInsights, 5)...)
	for i, in := range headN(insights, 5) {
		fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, in)
	}
	if quotes := headN(rec.KeyQuotes, 3); len(quotes) > 0 {
		sb.WriteString("## Supporting Evidence\n\n")
		for _, q := range quotes {
			fmt.Fprintf(&sb, "- \"%s\"\n", strings.Trim(q, `"`))
		}
	}
	return sb.String()
}

func briefTemplate(v Video, rec analysis.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", titleOf(v))
	fmt.Fprintf(&sb, "**%s** • %s\n\n", channelOf(v), durationOf(v))
	if topics := headN(rec.MainTopics, 4); len(topics) > 0 {
		fmt.Fprintf(&sb, "**Topics:** %s\n\n", strings.Join(topicLabels(topics), ", "))
	}
	if len(rec.KeyQuotes) > 0 {
		fmt.Fprintf(&sb, "**Key Quote:** \"%s\"\n\n", strings.Trim(rec.KeyQuotes[0], `"`))
	}
	if len(rec.MainAlpha) > 0 {
		fmt.Fprintf(&sb, "**Worth Listening:** %s\n", rec.MainAlpha[0])
	} else {
		sb.WriteString("**Worth Listening:** Contains perspectives relevant to current market dynamics.\n")
	}
	return sb.String()
}

func titleOf(v Video) string {
	if v.Title != "" {
		return v.Title
	}
	if v.ID != "" {
		return v.ID
	}
	return "Unknown Episode"
}

func channelOf(v Video) string {
	switch {
	case v.Channel != "":
		return v.Channel
	case v.Handle != "":
		return "@" + strings.TrimPrefix(v.Handle, "@")
	}
	return "Unknown Channel"
}

func durationOf(v Video) string {
	if v.Duration <= 0 {
		return "unknown-length"
	}
	return FormatDuration(v.Duration)
}

// topicLabel turns a category key like personal_development into prose.
func topicLabel(t string) string { return strings.ReplaceAll(t, "_", " ") }

func topicLabels(ts []string) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = topicLabel(t)
	}
	return out
}

func headN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

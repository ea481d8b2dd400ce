package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

// LLMRequest is one completion call.
type LLMRequest struct {
	System      string
	Prompt      string
	JSON        bool    // ask for a JSON object response
	Temperature float64 // 0 = provider default
	MaxTokens   int     // 0 = provider default
}

// LLMFunc performs a completion. main wires it to the configured provider.
type LLMFunc func(ctx context.Context, req LLMRequest) (string, error)

// LLMEnabled reports whether a model is configured.
func LLMEnabled() bool { return cfg.LLM != nil }

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends req to the configured model and returns the fence-stripped reply.
func CallLLM(ctx context.Context, req LLMRequest) (string, error) {
	if cfg.LLM == nil {
		return "", ErrLLMDisabled
	}
	metrics.LLMCalls.Add(1)
	resp, err := cfg.LLM(ctx, req)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// SegmentAnalyzer returns a SegmentFunc that asks the model about each segment of v.
// It returns nil when no model is configured, so the analyzer stays heuristic.
func SegmentAnalyzer(ctx context.Context, v Video) analysis.SegmentFunc {
	if cfg.LLM == nil {
		return nil
	}
	title := v.Title
	if title == "" {
		title = "Unknown episode"
	}
	channel := v.Channel
	if channel == "" {
		channel = v.Handle
	}
	return func(seg analysis.Segment) (analysis.Record, error) {
		if err := ctx.Err(); err != nil {
			return analysis.Record{}, err
		}
		raw, err := CallLLM(ctx, LLMRequest{
			System:      analysisSystem,
			Prompt:      fmt.Sprintf(segmentPrompt, title, channel, seg.Index, seg.Text),
			JSON:        true,
			Temperature: 0.2,
			MaxTokens:   2048,
		})
		if err != nil {
			return analysis.Record{}, err
		}
		return parseRecord(raw)
	}
}

// llmRecord mirrors analysis.Record but tolerates a quoted confidence score.
type llmRecord struct {
	MainAlpha           []string        `json:"main_alpha"`
	KeyInsights         []string        `json:"key_insights"`
	ActionableTakeaways []string        `json:"actionable_takeaways"`
	KeyQuotes           []string        `json:"key_quotes"`
	ContentCategory     string          `json:"content_category"`
	MainTopics          []string        `json:"main_topics"`
	Confidence          json.RawMessage `json:"confidence_score"`
}

// parseRecord decodes a model reply into a Record. Text around the outermost
// JSON object is ignored.
func parseRecord(raw string) (analysis.Record, error) {
	raw = stripFences(raw)
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return analysis.Record{}, fmt.Errorf("llm reply has no JSON object: %q", TruncateRunes(raw, 120, "..."))
	}
	var lr llmRecord
	if err := json.Unmarshal([]byte(raw[start:end+1]), &lr); err != nil {
		return analysis.Record{}, fmt.Errorf("parse llm record: %w", err)
	}
	rec := analysis.Record{
		MainAlpha:           lr.MainAlpha,
		KeyInsights:         lr.KeyInsights,
		ActionableTakeaways: lr.ActionableTakeaways,
		KeyQuotes:           lr.KeyQuotes,
		ContentCategory:     strings.ToLower(strings.TrimSpace(lr.ContentCategory)),
		MainTopics:          lr.MainTopics,
	}
	if len(lr.Confidence) > 0 {
		s := strings.Trim(string(lr.Confidence), `"`)
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
			rec.Confidence = f
		}
	}
	if rec.Empty() && rec.ContentCategory == "" {
		return analysis.Record{}, fmt.Errorf("llm record is empty")
	}
	return rec, nil
}

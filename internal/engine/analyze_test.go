package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

const sampleTranscript = `I think the real opportunity is in infrastructure because every market cycle rewards the picks and shovels.
The key is that distribution compounds faster than product quality in early markets.
You should start by talking to customers before writing any code at all.
"Capital flows to where it is treated best, and that is never a secret for long."`

func TestAnalyzeHeuristic(t *testing.T) {
	Init(Config{})
	InitCache("", time.Minute, 100, time.Minute)

	va := AnalyzeHeuristic(context.Background(), Video{ID: "h1", Title: "Cycles"}, sampleTranscript)
	if va.Method != analysis.MethodHeuristic || va.Segments != 1 {
		t.Errorf("method = %q, segments = %d", va.Method, va.Segments)
	}
	if len(va.Record.MainAlpha) == 0 || len(va.Record.KeyQuotes) == 0 {
		t.Errorf("record = %+v", va.Record)
	}
	if va.TranscriptChars != len([]rune(sampleTranscript)) || va.Video.Title != "Cycles" {
		t.Errorf("analysis = %+v", va)
	}
}

func TestAnalyzeTranscript_LLMAndCache(t *testing.T) {
	var calls atomic.Int32
	Init(Config{LLM: func(context.Context, LLMRequest) (string, error) {
		calls.Add(1)
		return `{"main_alpha":["Infrastructure wins every cycle."],"key_insights":["Distribution compounds."],"actionable_takeaways":["Talk to customers."],"key_quotes":["Capital flows to where it is treated best."],"content_category":"investing","main_topics":["investing"],"confidence_score":0.9}`, nil
	}})
	defer Init(Config{})
	InitCache("", time.Minute, 100, time.Minute)

	v := Video{ID: "llm1", Title: "Cycles"}
	first := AnalyzeTranscript(context.Background(), v, sampleTranscript)
	if first.Method != analysis.MethodLLM || first.Status != analysis.StatusOK {
		t.Fatalf("method = %q, status = %q", first.Method, first.Status)
	}
	if first.Record.ContentCategory != "investing" || first.Record.Confidence != 0.9 {
		t.Errorf("record = %+v", first.Record)
	}

	v.Title = "Cycles (renamed)"
	second := AnalyzeTranscript(context.Background(), v, sampleTranscript)
	if calls.Load() != 1 {
		t.Errorf("llm calls = %d, want 1 (second analysis cached)", calls.Load())
	}
	if second.Video.Title != "Cycles (renamed)" {
		t.Errorf("cached analysis should carry the current video, got %q", second.Video.Title)
	}
}

func TestAnalyzeTranscript_Truncates(t *testing.T) {
	Init(Config{MaxTranscriptChars: 200})
	defer Init(Config{})
	InitCache("", time.Minute, 100, time.Minute)

	long := strings.Repeat("The key is that patience compounds over long horizons. ", 40)
	va := AnalyzeTranscript(context.Background(), Video{ID: "t1"}, long)
	if va.TranscriptChars != len(long) {
		t.Errorf("TranscriptChars = %d, want original length %d", va.TranscriptChars, len(long))
	}
	if va.Segments != 1 {
		t.Errorf("segments = %d, want one segment after truncation", va.Segments)
	}
}

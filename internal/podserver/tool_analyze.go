package podserver

import (
	"context"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/report"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTranscriptAnalyze(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_analyze",
		Description: "Analyse a podcast transcript: main alpha, key insights, actionable takeaways, key quotes, content category, topics and a confidence score. Pass the text, or a YouTube URL/ID to fetch the transcript first. Uses the configured LLM per segment with pattern extraction as fallback.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.transcriptAnalyze)
}

func (t *tools) transcriptAnalyze(ctx context.Context, _ *mcp.CallToolRequest, input engine.AnalyzeInput) (*mcp.CallToolResult, engine.AnalyzeOutput, error) {
	v, text, err := toolutil.ResolveTranscript(ctx, input.Text, input.Video, input.Title)
	if err != nil {
		return nil, engine.AnalyzeOutput{}, err
	}

	var va engine.VideoAnalysis
	if input.Heuristic {
		va = engine.AnalyzeHeuristic(ctx, v, text)
	} else {
		va = engine.AnalyzeTranscript(ctx, v, text)
	}
	return nil, engine.AnalyzeOutput{
		VideoID:   v.ID,
		Record:    va.Record,
		Status:    va.Status,
		Method:    va.Method,
		Segments:  va.Segments,
		Fallbacks: va.Fallbacks,
		Markdown:  report.VideoSummary(va),
	}, nil
}

func registerTranscriptSummarize(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_summarize",
		Description: "Write a narrative summary of a podcast transcript in one of three styles: blog (article), insights (bulleted takeaways) or brief (short overview). Pass the text, or a YouTube URL/ID to fetch the transcript first. Falls back to a template built from the extracted analysis when no LLM is configured.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.transcriptSummarize)
}

func (t *tools) transcriptSummarize(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, engine.SummarizeOutput, error) {
	v, text, err := toolutil.ResolveTranscript(ctx, input.Text, input.Video, input.Title)
	if err != nil {
		return nil, engine.SummarizeOutput{}, err
	}
	style := engine.NormalizeStyle(input.Style)

	va := engine.AnalyzeHeuristic(ctx, v, text)
	summary, method := engine.Summarize(ctx, v, va.Record, text, style)
	return nil, engine.SummarizeOutput{Style: style, Method: method, Summary: summary}, nil
}

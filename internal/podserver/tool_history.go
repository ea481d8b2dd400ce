package podserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerProcessingHistory(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "processing_history",
		Description: "List recently processed videos from the local history (SQLite): video ID, channel, title, transcript path, analysis method, status and confidence. Newest first, optionally filtered by channel.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.processingHistory)
}

func (t *tools) processingHistory(ctx context.Context, _ *mcp.CallToolRequest, input engine.HistoryInput) (*mcp.CallToolResult, engine.HistoryOutput, error) {
	if t.History == nil {
		return nil, engine.HistoryOutput{}, errors.New("processing history is disabled")
	}
	entries, err := t.History.Recent(ctx, input.Channel, toolutil.ClampLimit(input.Limit, 20, 500))
	if err != nil {
		return nil, engine.HistoryOutput{}, err
	}
	if entries == nil {
		entries = []engine.ProcessedVideo{}
	}
	return nil, engine.HistoryOutput{Entries: entries}, nil
}

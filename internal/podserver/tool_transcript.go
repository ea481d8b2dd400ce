package podserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultTranscriptChars = 20000

func registerYouTubeTranscript(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the caption transcript of a YouTube video as clean plain text. Tries the watch page caption tracks, the transcript panel, the Android player and two transcript mirrors in turn. Accepts a URL or video ID.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.youtubeTranscript)
}

func (t *tools) youtubeTranscript(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
	if strings.TrimSpace(input.Video) == "" {
		return nil, engine.TranscriptOutput{}, fmt.Errorf("video is required")
	}
	id, err := toolutil.ResolveVideoID(input.Video)
	if err != nil {
		return nil, engine.TranscriptOutput{}, err
	}
	langs := toolutil.NormLangs(input.Languages)

	cacheKey := engine.CacheKey("youtube_transcript", id, strings.Join(langs, ","))
	tr, ok := engine.CacheLoadJSON[engine.Transcript](ctx, cacheKey)
	if !ok {
		tr, err = t.transcript(ctx, id, langs)
		if err != nil {
			return nil, engine.TranscriptOutput{}, err
		}
		engine.CacheStoreJSON(ctx, cacheKey, tr)
	}

	maxChars := input.MaxChars
	if maxChars <= 0 {
		maxChars = defaultTranscriptChars
	}
	out := engine.TranscriptOutput{VideoID: id, Method: tr.Method, Chars: len(tr.Text), Text: tr.Text}
	if len(tr.Text) > maxChars {
		out.Text = engine.TruncateAtWord(tr.Text, maxChars)
		out.Truncated = true
	}
	return nil, out, nil
}

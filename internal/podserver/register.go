// Package podserver registers the go_podcast MCP tools.
package podserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_podcast/internal/channels"
	"github.com/anatolykoptev/go_podcast/internal/digest"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
	"github.com/anatolykoptev/go_podcast/internal/report"
	"github.com/anatolykoptev/go_podcast/internal/storage"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps are the stores the tools work on. History and Channels may be nil.
type Deps struct {
	Runner    *digest.Runner
	History   *storage.History
	Channels  *channels.Manager
	OutputDir string
}

type tools struct {
	Deps
	listVideos func(ctx context.Context, handle string, daysBack, limit int) ([]engine.Video, error)
	transcript func(ctx context.Context, videoID string, langs []string) (engine.Transcript, error)
}

func newTools(d Deps) *tools {
	return &tools{
		Deps:       d,
		listVideos: sources.ListChannelVideos,
		transcript: sources.FetchTranscript,
	}
}

// RegisterTools registers all podcast tools on the given MCP server:
// podcast_digest, channel_videos, podcast_channels, youtube_transcript,
// transcript_analyze, transcript_summarize, processing_history.
func RegisterTools(server *mcp.Server, d Deps) {
	t := newTools(d)
	registerPodcastDigest(server, t)
	registerChannelVideos(server, t)
	registerPodcastChannels(server, t)
	registerYouTubeTranscript(server, t)
	registerTranscriptAnalyze(server, t)
	registerTranscriptSummarize(server, t)
	registerProcessingHistory(server, t)
}

func registerPodcastDigest(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "podcast_digest",
		Description: "Run the podcast digest: find recent uploads of the configured (or given) YouTube channels, fetch and store transcripts, extract alpha, insights, takeaways and quotes, and write a dated Markdown digest. Use dry_run to only list what would be processed.",
	}, t.digest)
}

func (t *tools) digest(ctx context.Context, _ *mcp.CallToolRequest, input engine.DigestInput) (*mcp.CallToolResult, engine.DigestOutput, error) {
	if t.Runner == nil {
		return nil, engine.DigestOutput{}, errors.New("digest runner not configured")
	}
	rep, err := t.Runner.Run(ctx, digest.Options{
		Channels:     input.Channels,
		DaysBack:     input.Days,
		Limit:        input.Limit,
		DryRun:       input.DryRun,
		SkipExisting: true,
		Summaries:    input.Summaries,
	})
	if err != nil {
		return nil, engine.DigestOutput{}, err
	}
	if input.DryRun {
		return nil, engine.DigestOutput{Markdown: report.Plan(rep), Report: rep}, nil
	}
	path, md, err := digest.WriteReport(rep, t.OutputDir)
	if err != nil {
		slog.Warn("podcast_digest: write failed", slog.String("dir", t.OutputDir), slog.Any("error", err))
	}
	return nil, engine.DigestOutput{Markdown: md, Path: path, Report: rep}, nil
}

func registerChannelVideos(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_videos",
		Description: "List recent uploads of a YouTube channel by handle: video ID, title, publish date, duration, views and URL. Newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.channelVideos)
}

func (t *tools) channelVideos(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelVideosInput) (*mcp.CallToolResult, engine.ChannelVideosOutput, error) {
	h := sources.NormalizeHandle(input.Channel)
	if h == "" {
		return nil, engine.ChannelVideosOutput{}, fmt.Errorf("channel is required")
	}
	days := input.Days
	switch {
	case days == 0:
		days = 7
	case days < 0:
		days = 0
	}
	limit := toolutil.ClampLimit(input.Limit, 5, 50)

	cacheKey := engine.CacheKey("channel_videos", h, fmt.Sprint(days), fmt.Sprint(limit))
	if out, ok := engine.CacheLoadJSON[engine.ChannelVideosOutput](ctx, cacheKey); ok {
		return nil, out, nil
	}
	videos, err := t.listVideos(ctx, h, days, limit)
	if err != nil {
		return nil, engine.ChannelVideosOutput{}, err
	}
	out := engine.ChannelVideosOutput{Channel: h, Videos: videos}
	engine.CacheStoreJSON(ctx, cacheKey, out)
	return nil, out, nil
}

func registerPodcastChannels(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "podcast_channels",
		Description: "List the channels configured in channels.yaml with display name, category, priority, enabled flag and last processed time. Filter by category or enabled_only.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.podcastChannels)
}

func (t *tools) podcastChannels(_ context.Context, _ *mcp.CallToolRequest, input engine.ChannelsInput) (*mcp.CallToolResult, engine.ChannelsOutput, error) {
	if t.Channels == nil {
		return nil, engine.ChannelsOutput{}, errors.New("channel config not loaded")
	}
	var list []channels.Channel
	switch {
	case input.Category != "":
		list = t.Channels.ByCategory(input.Category)
	case input.EnabledOnly:
		list = t.Channels.Enabled()
	default:
		list = t.Channels.All()
	}
	out := engine.ChannelsOutput{Channels: []engine.ChannelEntry{}}
	for _, c := range list {
		if input.EnabledOnly && !c.Enabled {
			continue
		}
		out.Channels = append(out.Channels, engine.ChannelEntry{
			Handle:        c.Handle,
			DisplayName:   c.DisplayName,
			Category:      c.Category,
			Priority:      c.Priority,
			Enabled:       c.Enabled,
			LastProcessed: c.LastProcessed,
		})
	}
	return nil, out, nil
}

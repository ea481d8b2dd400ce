package podserver

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_podcast/internal/channels"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/storage"
)

const sampleTranscript = `Welcome back to the show. The key insight is that distribution beats product for most startups.
I think the biggest mistake founders make is hiring too fast before they find product market fit.
You should always talk to customers every single week. The important thing is that compounding works in
knowledge as well as money. "The best investment you can make is in yourself," he said.
We also talked about artificial intelligence and how machine learning models are changing software.`

func TestRegisterTools(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "go_podcast", Version: "test"}, nil)
	assert.NotPanics(t, func() { RegisterTools(server, Deps{}) })
}

func TestChannelVideos(t *testing.T) {
	engine.Init(engine.Config{})
	tl := newTools(Deps{})
	type call struct {
		handle      string
		days, limit int
	}
	var got []call
	tl.listVideos = func(_ context.Context, h string, days, limit int) ([]engine.Video, error) {
		got = append(got, call{h, days, limit})
		return []engine.Video{{ID: "aaaaaaaaaaa", Title: "Episode", Handle: h}}, nil
	}
	ctx := context.Background()

	_, out, err := tl.channelVideos(ctx, nil, engine.ChannelVideosInput{Channel: "@naval"})
	require.NoError(t, err)
	assert.Equal(t, "naval", out.Channel)
	require.Len(t, out.Videos, 1)

	_, _, err = tl.channelVideos(ctx, nil, engine.ChannelVideosInput{Channel: "lexfridman", Days: -1, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, []call{{"naval", 7, 5}, {"lexfridman", 0, 50}}, got)

	_, _, err = tl.channelVideos(ctx, nil, engine.ChannelVideosInput{})
	assert.Error(t, err)
}

func TestYouTubeTranscript(t *testing.T) {
	engine.Init(engine.Config{})
	tl := newTools(Deps{})
	long := strings.Repeat("word ", 100)
	tl.transcript = func(_ context.Context, id string, langs []string) (engine.Transcript, error) {
		assert.Equal(t, []string{"en", "en-US", "en-GB"}, langs)
		if id != "dQw4w9WgXcQ" {
			return engine.Transcript{}, engine.ErrNoTranscript
		}
		return engine.Transcript{VideoID: id, Text: strings.TrimSpace(long), Method: engine.TranscriptInnertube}, nil
	}
	ctx := context.Background()

	_, out, err := tl.youtubeTranscript(ctx, nil, engine.TranscriptInput{Video: "https://youtu.be/dQw4w9WgXcQ", MaxChars: 40})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
	assert.Equal(t, engine.TranscriptInnertube, out.Method)
	assert.True(t, out.Truncated)
	assert.Less(t, len(out.Text), out.Chars)
	assert.Equal(t, 499, out.Chars)

	_, out, err = tl.youtubeTranscript(ctx, nil, engine.TranscriptInput{Video: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.False(t, out.Truncated)

	_, _, err = tl.youtubeTranscript(ctx, nil, engine.TranscriptInput{Video: "aaaaaaaaaaa"})
	assert.True(t, errors.Is(err, engine.ErrNoTranscript))
	_, _, err = tl.youtubeTranscript(ctx, nil, engine.TranscriptInput{Video: "https://example.com/watch"})
	assert.Error(t, err)
	_, _, err = tl.youtubeTranscript(ctx, nil, engine.TranscriptInput{})
	assert.Error(t, err)
}

func TestTranscriptAnalyze(t *testing.T) {
	engine.Init(engine.Config{})
	tl := newTools(Deps{})

	_, out, err := tl.transcriptAnalyze(context.Background(), nil, engine.AnalyzeInput{
		Text: sampleTranscript, Title: "Distribution Beats Product", Heuristic: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Status)
	assert.Contains(t, out.Markdown, "# Distribution Beats Product")
	assert.Contains(t, out.Markdown, "**Analysis Confidence:**")

	_, _, err = tl.transcriptAnalyze(context.Background(), nil, engine.AnalyzeInput{})
	assert.Error(t, err)
}

func TestTranscriptSummarize(t *testing.T) {
	engine.Init(engine.Config{})
	tl := newTools(Deps{})

	_, out, err := tl.transcriptSummarize(context.Background(), nil, engine.SummarizeInput{
		Text: sampleTranscript, Title: "Distribution Beats Product", Style: "BRIEF",
	})
	require.NoError(t, err)
	assert.Equal(t, engine.StyleBrief, out.Style)
	assert.Equal(t, engine.SummaryTemplate, out.Method)
	assert.NotEmpty(t, out.Summary)
}

func TestProcessingHistory(t *testing.T) {
	tl := newTools(Deps{})
	_, _, err := tl.processingHistory(context.Background(), nil, engine.HistoryInput{})
	assert.Error(t, err)

	h, err := storage.OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	ctx := context.Background()
	require.NoError(t, h.MarkProcessed(ctx, engine.ProcessedVideo{
		VideoID: "aaaaaaaaaaa", Channel: "naval", Title: "One", Status: "ok",
		ProcessedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, h.MarkProcessed(ctx, engine.ProcessedVideo{
		VideoID: "bbbbbbbbbbb", Channel: "lexfridman", Title: "Two", Status: "ok",
		ProcessedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}))

	tl = newTools(Deps{History: h})
	_, out, err := tl.processingHistory(ctx, nil, engine.HistoryInput{})
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "bbbbbbbbbbb", out.Entries[0].VideoID)

	_, out, err = tl.processingHistory(ctx, nil, engine.HistoryInput{Channel: "@naval"})
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "One", out.Entries[0].Title)

	_, out, err = tl.processingHistory(ctx, nil, engine.HistoryInput{Channel: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, out.Entries)
	assert.Empty(t, out.Entries)
}

func TestPodcastChannels(t *testing.T) {
	m, err := channels.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, m.SetEnabled("joerogan", false))
	tl := newTools(Deps{Channels: m})

	handles := func(out engine.ChannelsOutput) []string {
		var hs []string
		for _, c := range out.Channels {
			hs = append(hs, c.Handle)
		}
		return hs
	}

	_, out, err := tl.podcastChannels(context.Background(), nil, engine.ChannelsInput{})
	require.NoError(t, err)
	assert.Len(t, out.Channels, 5)

	_, out, err = tl.podcastChannels(context.Background(), nil, engine.ChannelsInput{EnabledOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"allinchamath", "lexfridman", "naval", "davidperell"}, handles(out))

	_, out, err = tl.podcastChannels(context.Background(), nil, engine.ChannelsInput{Category: "business"})
	require.NoError(t, err)
	assert.Equal(t, []string{"allinchamath", "naval"}, handles(out))

	_, _, err = newTools(Deps{}).podcastChannels(context.Background(), nil, engine.ChannelsInput{})
	assert.Error(t, err)
}

func TestDigest_NoRunner(t *testing.T) {
	_, _, err := newTools(Deps{}).digest(context.Background(), nil, engine.DigestInput{})
	assert.Error(t, err)
}

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistory_MarkAndRecent(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ok, err := h.IsProcessed(ctx, "vid1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.MarkProcessed(ctx, engine.ProcessedVideo{VideoID: "vid1", Channel: "@naval", Title: "One", Status: "ok", Confidence: 0.8, ProcessedAt: base}))
	require.NoError(t, h.MarkProcessed(ctx, engine.ProcessedVideo{VideoID: "vid2", Channel: "lexfridman", Title: "Two", Status: "degraded", ProcessedAt: base.Add(time.Hour)}))
	require.NoError(t, h.MarkProcessed(ctx, engine.ProcessedVideo{VideoID: "vid3", Channel: "naval", Title: "Three", Status: "ok", Method: "llm", Path: "/tmp/x.md", ProcessedAt: base.Add(2 * time.Hour)}))

	ok, err = h.IsProcessed(ctx, "vid1")
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := h.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"vid3", "vid2", "vid1"}, []string{all[0].VideoID, all[1].VideoID, all[2].VideoID})
	assert.Equal(t, "/tmp/x.md", all[0].Path)
	assert.Equal(t, "llm", all[0].Method)
	assert.True(t, base.Equal(all[2].ProcessedAt))
	assert.InDelta(t, 0.8, all[2].Confidence, 1e-9)

	naval, err := h.Recent(ctx, "@naval", 10)
	require.NoError(t, err)
	assert.Len(t, naval, 2)

	// Re-marking replaces the row.
	require.NoError(t, h.MarkProcessed(ctx, engine.ProcessedVideo{VideoID: "vid1", Channel: "naval", Title: "One", Status: "failed", ProcessedAt: base.Add(3 * time.Hour)}))
	all, err = h.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "vid1", all[0].VideoID)
	assert.Equal(t, "failed", all[0].Status)

	assert.Error(t, h.MarkProcessed(ctx, engine.ProcessedVideo{}))
}

func TestHistory_LastProcessed(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	_, ok, err := h.LastProcessed(ctx, "naval")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC)
	require.NoError(t, h.SetLastProcessed(ctx, "@naval", at))
	require.NoError(t, h.SetLastProcessed(ctx, "naval", at.Add(time.Hour)))

	got, ok, err := h.LastProcessed(ctx, "naval")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Add(time.Hour).Equal(got))
}

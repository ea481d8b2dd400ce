package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

func stubNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func sampleVideo() engine.Video {
	return engine.Video{
		ID:        "abc12345678",
		Title:     "Sample Podcast Episode",
		Channel:   "Test Channel",
		Handle:    "testchannel",
		Published: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Duration:  3725,
	}
}

func TestTranscriptStore_SaveLoad(t *testing.T) {
	stubNow(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC))
	store, err := NewTranscriptStore(filepath.Join(t.TempDir(), "transcripts"))
	require.NoError(t, err)

	v := sampleVideo()
	assert.False(t, store.Exists(v))

	path, err := store.Save(v, "\n  Hello world. This is the transcript.\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "testchannel_20240115_abc12345678.md"), path)
	assert.True(t, store.Exists(v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	for _, want := range []string{
		"# Sample Podcast Episode\n",
		"**Channel:** Test Channel (@testchannel)  \n",
		"**Duration:** 1h 2m  \n",
		"**Published:** January 15, 2024  \n",
		"**URL:** https://www.youtube.com/watch?v=abc12345678\n",
		"**Extracted:** 2024-02-01 09:30 UTC",
		"## Transcript\n\nHello world. This is the transcript.\n\n---",
		"**Metadata:**\n```json\n{",
	} {
		assert.Contains(t, content, want)
	}

	got, text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello world. This is the transcript.", text)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, v.Title, got.Title)
	assert.Equal(t, v.Handle, got.Handle)
	assert.Equal(t, v.Duration, got.Duration)
	assert.True(t, v.Published.Equal(got.Published))
}

func TestTranscriptStore_UnknownFields(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	require.NoError(t, err)
	path := store.Path(engine.Video{})
	assert.Equal(t, "unknown_unknown_unknown.md", filepath.Base(path))
	assert.Equal(t, "x_unknown_id000000000.md", filepath.Base(store.Path(engine.Video{ID: "id000000000", Handle: "@x"})))
}

func TestLoad_Variants(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	plain := write("plain.txt", "  just some text  \n")
	v, text, err := Load(plain)
	require.NoError(t, err)
	assert.Equal(t, "just some text", text)
	assert.Equal(t, engine.Video{}, v)

	noMeta := write("nometa.md", "# T\n\n## Transcript\n\nbody text\n")
	_, text, err = Load(noMeta)
	require.NoError(t, err)
	assert.Equal(t, "body text", text)

	legacy := write("legacy.md", "# T\n\n---\n\n## Transcript\n\nold body\n\n---\n\n**Metadata:**\n```json\n"+
		`{"video_id": "old00000001", "channel_handle": "@naval", "upload_date": "2024-01-15", "duration": 60}`+"\n```\n")
	v, text, err = Load(legacy)
	require.NoError(t, err)
	assert.Equal(t, "old body", text)
	assert.Equal(t, "old00000001", v.ID)
	assert.Equal(t, "naval", v.Handle)
	assert.Equal(t, 2024, v.Published.Year())

	_, _, err = Load(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestTranscriptStore_List(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	files := []string{"naval_20240101_a.md", "lex_20240102_b.md", "naval_20240103_c.md", "notes.txt"}
	for i, name := range files {
		p := filepath.Join(store.Dir(), name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}

	all, err := store.List("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, strings.HasSuffix(all[0], "naval_20240103_c.md"))
	assert.True(t, strings.HasSuffix(all[2], "naval_20240101_a.md"))

	naval, err := store.List("@naval")
	require.NoError(t, err)
	assert.Len(t, naval, 2)
}

func TestFileDuration(t *testing.T) {
	tests := map[int]string{0: "Unknown", 42: "42s", 250: "4m 10s", 3725: "1h 2m"}
	for in, want := range tests {
		assert.Equal(t, want, fileDuration(in), in)
	}
}

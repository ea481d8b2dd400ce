package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	got := make(chan string, 10)
	w := New(dir, func(_ context.Context, path string) error {
		got <- path
		return errors.New("handler errors are logged only")
	}, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.md"), []byte("x"), 0o600))
	target := filepath.Join(dir, "episode.md")
	f, err := os.Create(target)
	require.NoError(t, err)
	for range 3 {
		_, err = f.WriteString("some transcript text\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	select {
	case p := <-got:
		assert.Equal(t, target, p)
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}
	// Writes inside the settle window coalesce into one call.
	select {
	case p := <-got:
		t.Fatalf("unexpected second call for %s", p)
	case <-time.After(600 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil }, 0)
	assert.Error(t, w.Run(context.Background()))
}

func TestWatched(t *testing.T) {
	w := New(".", nil, 0)
	assert.True(t, w.watched("/x/a.md"))
	assert.True(t, w.watched("/x/B.TXT"))
	assert.False(t, w.watched("/x/a.pdf"))
	assert.False(t, w.watched("/x/.a.md"))
}

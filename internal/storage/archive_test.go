package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

func TestMigrations_Ordered(t *testing.T) {
	names, err := migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_analyses.sql", "002_topics.sql"}, names)
}

func TestConnectArchive_RequiresURL(t *testing.T) {
	_, err := ConnectArchive(context.Background(), "")
	assert.Error(t, err)
}

// Runs against a real database when PODCAST_TEST_DATABASE_URL is set.
func TestArchive_SaveRecent(t *testing.T) {
	url := os.Getenv("PODCAST_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PODCAST_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	a, err := ConnectArchive(ctx, url)
	require.NoError(t, err)
	defer a.Close()

	va := engine.VideoAnalysis{
		Video:  engine.Video{ID: "archive0001", Handle: "@naval", Title: "Archive test", Duration: 60},
		Record: analysis.Record{MainAlpha: []string{"alpha"}, MainTopics: []string{"business"}, Confidence: 0.7},
		Status: analysis.StatusOK, Method: analysis.MethodHeuristic, AnalyzedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, a.SaveAnalysis(ctx, va))

	got, err := a.RecentAnalyses(ctx, "naval", 50)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	found := false
	for _, g := range got {
		if g.Video.ID == va.Video.ID {
			found = true
			assert.Equal(t, []string{"alpha"}, g.Record.MainAlpha)
			assert.Equal(t, analysis.StatusOK, g.Status)
		}
	}
	assert.True(t, found)
}

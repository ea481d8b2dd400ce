package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func stubNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = orig })
}

func videoRendererJSON(id, title, published, length, views string) string {
	return fmt.Sprintf(`{"richItemRenderer":{"content":{"videoRenderer":{"videoId":%q,"title":{"runs":[{"text":%q}]},"publishedTimeText":{"simpleText":%q},"lengthText":{"simpleText":%q},"viewCountText":{"simpleText":%q}}}}}`,
		id, title, published, length, views)
}

func channelPageHTML() string {
	return `<html><head></head><body><script>var ytInitialData = {"metadata":{"channelMetadataRenderer":{"title":"Lex Fridman","externalId":"UCSHZKyawb77ixDdsGog4iWA"}},` +
		`"contents":{"twoColumnBrowseResultsRenderer":{"tabs":[{"tabRenderer":{"content":{"richGridRenderer":{"contents":[` +
		videoRendererJSON("aaaaaaaaaaa", "Episode one", "2 days ago", "1:02:03", "1,234 views") + `,` +
		videoRendererJSON("bbbbbbbbbbb", "Episode two", "3 weeks ago", "42:10", "98 views") + `,` +
		videoRendererJSON("ccccccccccc", "Episode \"three\" {live}", "Streamed 5 hours ago", "3:04:05", "No views") +
		`]}}}}]}}};</script></body></html>`
}

func newYouTubeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/@lexfridman/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, channelPageHTML())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{YouTubeURL: srv.URL})
	t.Cleanup(func() { engine.Init(engine.Config{}) })
	return srv
}

func TestListChannelVideos_Scrape(t *testing.T) {
	stubNow(t)
	newYouTubeServer(t)

	videos, err := ListChannelVideos(context.Background(), "@lexfridman", 7, 5)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "aaaaaaaaaaa", videos[0].ID)
	assert.Equal(t, "Episode one", videos[0].Title)
	assert.Equal(t, "Lex Fridman", videos[0].Channel)
	assert.Equal(t, "lexfridman", videos[0].Handle)
	assert.Equal(t, 3723, videos[0].Duration)
	assert.Equal(t, int64(1234), videos[0].Views)
	assert.Equal(t, fixedNow.Add(-48*time.Hour), videos[0].Published)

	assert.Equal(t, "ccccccccccc", videos[1].ID)
	assert.Equal(t, `Episode "three" {live}`, videos[1].Title)
	assert.Equal(t, int64(0), videos[1].Views)

	all, err := ListChannelVideos(context.Background(), "lexfridman", 0, 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestValidateChannel(t *testing.T) {
	newYouTubeServer(t)

	info, err := ValidateChannel(context.Background(), "https://www.youtube.com/@lexfridman")
	require.NoError(t, err)
	assert.Equal(t, "Lex Fridman", info.Title)
	assert.Equal(t, "UCSHZKyawb77ixDdsGog4iWA", info.ID)

	_, err = ValidateChannel(context.Background(), "@doesnotexist")
	assert.True(t, errors.Is(err, engine.ErrChannelNotFound), "err = %v", err)

	_, err = ValidateChannel(context.Background(), "no spaces allowed")
	assert.True(t, errors.Is(err, engine.ErrChannelNotFound), "err = %v", err)
}

func TestListChannelVideos_DataAPI(t *testing.T) {
	stubNow(t)
	var keys []string
	mux := http.NewServeMux()
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("key"))
		if r.URL.Query().Get("key") != "good" {
			http.Error(w, `{"error":"keyInvalid"}`, http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("forHandle") != "@naval" {
			fmt.Fprint(w, `{"items":[]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":"UCnaval","snippet":{"title":"Naval"},"contentDetails":{"relatedPlaylists":{"uploads":"UUnaval"}}}]}`)
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UUnaval", r.URL.Query().Get("playlistId"))
		fmt.Fprintf(w, `{"items":[
			{"snippet":{"title":"Fresh","description":"d","channelTitle":"Naval"},"contentDetails":{"videoId":"fresh000001","videoPublishedAt":%q}},
			{"snippet":{"title":"Old","channelTitle":"Naval"},"contentDetails":{"videoId":"old00000001","videoPublishedAt":%q}}
		]}`, fixedNow.Add(-24*time.Hour).Format(time.RFC3339), fixedNow.Add(-30*24*time.Hour).Format(time.RFC3339))
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fresh000001,old00000001", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items":[{"id":"fresh000001","contentDetails":{"duration":"PT1H2M3S"},"statistics":{"viewCount":"5000"}}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	engine.Init(engine.Config{YouTubeAPIKey: "bad", YouTubeAPIKeyFallback: "good", YouTubeDataAPIURL: srv.URL, YouTubeURL: srv.URL})
	defer engine.Init(engine.Config{})

	videos, err := ListChannelVideos(context.Background(), "naval", 7, 5)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "fresh000001", videos[0].ID)
	assert.Equal(t, 3723, videos[0].Duration)
	assert.Equal(t, int64(5000), videos[0].Views)
	assert.Equal(t, "Naval", videos[0].Channel)
	assert.Contains(t, keys, "bad")
	assert.Contains(t, keys, "good")

	_, err = ListChannelVideos(context.Background(), "someoneelse", 7, 5)
	assert.True(t, errors.Is(err, engine.ErrChannelNotFound), "err = %v", err)
}

func TestParseHelpers(t *testing.T) {
	ref := fixedNow
	relTests := []struct {
		in   string
		want time.Time
	}{
		{"3 days ago", ref.Add(-72 * time.Hour)},
		{"1 week ago", ref.Add(-7 * 24 * time.Hour)},
		{"Streamed 2 months ago", ref.Add(-60 * 24 * time.Hour)},
		{"Premieres tomorrow", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range relTests {
		assert.Equal(t, tt.want, parseRelativeTime(tt.in, ref), tt.in)
	}

	clockTests := map[string]int{"1:02:03": 3723, "42:10": 2530, "59": 59, "": 0, "LIVE": 0}
	for in, want := range clockTests {
		assert.Equal(t, want, parseClockDuration(in), in)
	}

	isoTests := map[string]int{"PT1H2M3S": 3723, "PT15M": 900, "P1DT1S": 86401, "PT0S": 0, "bogus": 0}
	for in, want := range isoTests {
		assert.Equal(t, want, parseISODuration(in), in)
	}

	viewTests := map[string]int64{"1,234,567 views": 1234567, "1 view": 1, "No views": 0}
	for in, want := range viewTests {
		assert.Equal(t, want, parseViewCount(in), in)
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":"}\"{","b":{}}`, string(extractJSON([]byte(`{"a":"}\"{","b":{}};var x = 1;`))))
	assert.Nil(t, extractJSON([]byte(`{"unterminated":`)))
	assert.Nil(t, extractJSON([]byte(`[1,2]`)))
}

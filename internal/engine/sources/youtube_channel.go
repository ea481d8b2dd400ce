package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// Channel listing: YouTube Data API v3 when a key is configured, otherwise
// scraping ytInitialData from the channel's /videos tab.

const (
	ytInitialDataMarker = "var ytInitialData = "
	maxChannelVideos    = 50
)

var errNotFound = errors.New("not found")

// now is replaced in tests.
var now = time.Now

// ChannelInfo identifies a channel.
type ChannelInfo struct {
	Handle  string `json:"handle"`
	ID      string `json:"channel_id,omitempty"`
	Title   string `json:"title"`
	Uploads string `json:"uploads_playlist,omitempty"`
}

// ValidateChannel checks that handle names an existing channel and returns its identity.
func ValidateChannel(ctx context.Context, handle string) (ChannelInfo, error) {
	h := NormalizeHandle(handle)
	if h == "" {
		return ChannelInfo{}, fmt.Errorf("%w: invalid handle %q", engine.ErrChannelNotFound, handle)
	}
	engine.IncrChannelLookups()
	if engine.Cfg.YouTubeAPIKey != "" {
		info, err := dataAPIChannel(ctx, h)
		if err == nil || errors.Is(err, engine.ErrChannelNotFound) {
			return info, err
		}
		slog.Warn("youtube: data API channel lookup failed, scraping", slog.String("handle", h), slog.Any("error", err))
	}
	info, _, err := scrapeChannel(ctx, h, 0)
	return info, err
}

// ListChannelVideos returns up to limit uploads of handle, newest first.
// Videos with a known publish date older than daysBack days are skipped; daysBack <= 0 disables the filter.
func ListChannelVideos(ctx context.Context, handle string, daysBack, limit int) ([]engine.Video, error) {
	h := NormalizeHandle(handle)
	if h == "" {
		return nil, fmt.Errorf("%w: invalid handle %q", engine.ErrChannelNotFound, handle)
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > maxChannelVideos {
		limit = maxChannelVideos
	}

	var (
		videos []engine.Video
		err    error
	)
	if engine.Cfg.YouTubeAPIKey != "" {
		videos, err = listViaDataAPI(ctx, h, limit)
		if err != nil && !errors.Is(err, engine.ErrChannelNotFound) {
			slog.Warn("youtube: data API listing failed, scraping", slog.String("handle", h), slog.Any("error", err))
			videos = nil
		}
	}
	if videos == nil {
		if err != nil && errors.Is(err, engine.ErrChannelNotFound) {
			return nil, err
		}
		// Scrape more than needed so the age filter still leaves enough.
		_, videos, err = scrapeChannel(ctx, h, limit*3)
		if err != nil {
			return nil, err
		}
	}

	out := filterRecent(videos, daysBack, limit)
	engine.IncrVideosListed(len(out))
	return out, nil
}

func filterRecent(videos []engine.Video, daysBack, limit int) []engine.Video {
	var cutoff time.Time
	if daysBack > 0 {
		cutoff = now().Add(-time.Duration(daysBack) * 24 * time.Hour)
	}
	out := make([]engine.Video, 0, limit)
	for _, v := range videos {
		if len(out) >= limit {
			break
		}
		if !cutoff.IsZero() && !v.Published.IsZero() && v.Published.Before(cutoff) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// --- YouTube Data API v3 ---

type ytChannelsResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytPlaylistItemsResp struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytVideosResp struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// dataAPIGet calls a Data API endpoint, falling back to the secondary key on failure.
func dataAPIGet(ctx context.Context, endpoint string, params url.Values, out any) error {
	keys := []string{engine.Cfg.YouTubeAPIKey}
	if engine.Cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, engine.Cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		err := doDataAPIGet(ctx, endpoint, params, key, out)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Debug("youtube data API key failed, trying fallback", slog.String("endpoint", endpoint), slog.Any("error", err))
	}
	return lastErr
}

func doDataAPIGet(ctx context.Context, endpoint string, params url.Values, key string, out any) error {
	engine.IncrYouTubeDataAPI()
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", key)
	apiURL := engine.Cfg.YouTubeDataAPIURL + "/" + endpoint + "?" + q.Encode()

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("youtube data API %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("youtube data API %s %d: %s", endpoint, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube data API %s: %w", endpoint, err)
	}
	return nil
}

func dataAPIChannel(ctx context.Context, handle string) (ChannelInfo, error) {
	var cr ytChannelsResp
	err := dataAPIGet(ctx, "channels", url.Values{
		"part":      {"snippet,contentDetails"},
		"forHandle": {"@" + handle},
	}, &cr)
	if err != nil {
		return ChannelInfo{}, err
	}
	if len(cr.Items) == 0 {
		return ChannelInfo{}, fmt.Errorf("%w: @%s", engine.ErrChannelNotFound, handle)
	}
	it := cr.Items[0]
	return ChannelInfo{
		Handle:  handle,
		ID:      it.ID,
		Title:   it.Snippet.Title,
		Uploads: it.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

func listViaDataAPI(ctx context.Context, handle string, limit int) ([]engine.Video, error) {
	info, err := dataAPIChannel(ctx, handle)
	if err != nil {
		return nil, err
	}
	if info.Uploads == "" {
		return nil, fmt.Errorf("channel @%s has no uploads playlist", handle)
	}

	var pr ytPlaylistItemsResp
	if err := dataAPIGet(ctx, "playlistItems", url.Values{
		"part":       {"snippet,contentDetails"},
		"playlistId": {info.Uploads},
		"maxResults": {strconv.Itoa(min(limit*3, maxChannelVideos))},
	}, &pr); err != nil {
		return nil, err
	}

	videos := make([]engine.Video, 0, len(pr.Items))
	ids := make([]string, 0, len(pr.Items))
	for _, it := range pr.Items {
		id := it.ContentDetails.VideoID
		if id == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, it.ContentDetails.VideoPublishedAt)
		channel := it.Snippet.ChannelTitle
		if channel == "" {
			channel = info.Title
		}
		videos = append(videos, engine.Video{
			ID:          id,
			Title:       it.Snippet.Title,
			Channel:     channel,
			Handle:      handle,
			URL:         "https://www.youtube.com/watch?v=" + id,
			Published:   published,
			Description: engine.TruncateRunes(it.Snippet.Description, 500, "..."),
		})
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return videos, nil
	}

	var vr ytVideosResp
	if err := dataAPIGet(ctx, "videos", url.Values{
		"part": {"contentDetails,statistics"},
		"id":   {strings.Join(ids, ",")},
	}, &vr); err != nil {
		// Durations are cosmetic; keep the listing.
		slog.Debug("youtube: video details failed", slog.Any("error", err))
		return videos, nil
	}
	details := make(map[string]int, len(vr.Items))
	views := make(map[string]int64, len(vr.Items))
	for _, it := range vr.Items {
		details[it.ID] = parseISODuration(it.ContentDetails.Duration)
		views[it.ID], _ = strconv.ParseInt(it.Statistics.ViewCount, 10, 64)
	}
	for i := range videos {
		videos[i].Duration = details[videos[i].ID]
		videos[i].Views = views[videos[i].ID]
	}
	return videos, nil
}

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts an ISO 8601 duration like PT1H2M3S to seconds.
func parseISODuration(s string) int {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	total := 0
	for i, mult := range []int{86400, 3600, 60, 1} {
		if n, err := strconv.Atoi(m[i+1]); err == nil {
			total += n * mult
		}
	}
	return total
}

// --- ytInitialData scraping ---

type ytText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t ytText) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type ytVideoRenderer struct {
	VideoID            string  `json:"videoId"`
	Title              ytText  `json:"title"`
	PublishedTimeText  ytText  `json:"publishedTimeText"`
	LengthText         ytText  `json:"lengthText"`
	ViewCountText      ytText  `json:"viewCountText"`
	DescriptionSnippet *ytText `json:"descriptionSnippet"`
}

type ytChannelPage struct {
	Metadata struct {
		ChannelMetadataRenderer struct {
			Title      string `json:"title"`
			ExternalID string `json:"externalId"`
		} `json:"channelMetadataRenderer"`
	} `json:"metadata"`
}

// scrapeChannel loads https://www.youtube.com/@handle/videos and returns the
// channel identity and up to limit videos.
func scrapeChannel(ctx context.Context, handle string, limit int) (ChannelInfo, []engine.Video, error) {
	page, err := getPage(ctx, ytURL("/@"+url.PathEscape(handle)+"/videos"), 6*1024*1024)
	if errors.Is(err, errNotFound) {
		return ChannelInfo{}, nil, fmt.Errorf("%w: @%s", engine.ErrChannelNotFound, handle)
	}
	if err != nil {
		return ChannelInfo{}, nil, fmt.Errorf("youtube channel page: %w", err)
	}

	data := embeddedJSON(page, ytInitialDataMarker)
	if data == nil {
		return ChannelInfo{}, nil, errors.New("ytInitialData not found in channel page")
	}
	var cp ytChannelPage
	if err := json.Unmarshal(data, &cp); err != nil {
		return ChannelInfo{}, nil, fmt.Errorf("decode ytInitialData: %w", err)
	}
	md := cp.Metadata.ChannelMetadataRenderer
	if md.Title == "" {
		return ChannelInfo{}, nil, fmt.Errorf("%w: @%s", engine.ErrChannelNotFound, handle)
	}
	info := ChannelInfo{Handle: handle, ID: md.ExternalID, Title: md.Title}
	if limit <= 0 {
		return info, nil, nil
	}

	renderers := collectVideoRenderers(data, limit)
	videos := make([]engine.Video, 0, len(renderers))
	for _, vr := range renderers {
		v := engine.Video{
			ID:        vr.VideoID,
			Title:     vr.Title.String(),
			Channel:   info.Title,
			Handle:    handle,
			URL:       "https://www.youtube.com/watch?v=" + vr.VideoID,
			Published: parseRelativeTime(vr.PublishedTimeText.String(), now()),
			Duration:  parseClockDuration(vr.LengthText.String()),
			Views:     parseViewCount(vr.ViewCountText.String()),
		}
		if vr.DescriptionSnippet != nil {
			v.Description = vr.DescriptionSnippet.String()
		}
		videos = append(videos, v)
	}
	return info, videos, nil
}

// collectVideoRenderers walks ytInitialData depth-first for videoRenderer entries, in document order.
func collectVideoRenderers(data []byte, limit int) []ytVideoRenderer {
	var results []ytVideoRenderer
	seen := make(map[string]bool)
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit || len(v) == 0 {
			return
		}
		switch v[0] {
		case '{':
			var obj map[string]json.RawMessage
			if json.Unmarshal(v, &obj) != nil {
				return
			}
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytVideoRenderer
				if json.Unmarshal(raw, &vr) == nil && vr.VideoID != "" && !seen[vr.VideoID] {
					seen[vr.VideoID] = true
					results = append(results, vr)
				}
				return
			}
			// Sorted keys keep the walk deterministic; videos themselves sit in arrays.
			for _, k := range slices.Sorted(maps.Keys(obj)) {
				walk(obj[k])
			}
		case '[':
			var arr []json.RawMessage
			if json.Unmarshal(v, &arr) != nil {
				return
			}
			for _, item := range arr {
				walk(item)
			}
		}
	}
	walk(data)
	return results
}

var relativeTimeRE = regexp.MustCompile(`(\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago`)

// parseRelativeTime converts "3 days ago" or "Streamed 2 weeks ago" to an
// absolute time. Returns the zero time when s is not relative.
func parseRelativeTime(s string, ref time.Time) time.Time {
	m := relativeTimeRE.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}
	}
	n, _ := strconv.Atoi(m[1])
	var unit time.Duration
	switch m[2] {
	case "second":
		unit = time.Second
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	case "month":
		unit = 30 * 24 * time.Hour
	case "year":
		unit = 365 * 24 * time.Hour
	}
	return ref.Add(-time.Duration(n) * unit).UTC()
}

// parseClockDuration converts "1:02:03" or "42:10" to seconds.
func parseClockDuration(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	total := 0
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

var leadingDigitsRE = regexp.MustCompile(`\d+`)

// parseViewCount extracts the number from "1,234,567 views". "No views" is 0.
func parseViewCount(s string) int64 {
	n, _ := strconv.ParseInt(leadingDigitsRE.FindString(strings.ReplaceAll(s, ",", "")), 10, 64)
	return n
}

package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// YouTube transcript fetching. FetchTranscript tries, in order:
//  1. watch page ytInitialPlayerResponse → caption track XML
//  2. /next engagement panel → /get_transcript
//  3. ANDROID Innertube /player → caption track XML
//  4. youtubetranscript.com mirror
//  5. downsub SRT mirror

// transcriptStep is one source in the fallback chain.
type transcriptStep struct {
	method string
	fetch  func(ctx context.Context, videoID string, langs []string) (string, error)
}

// transcriptChain is a variable so tests can reorder or stub steps.
var transcriptChain = []transcriptStep{
	{engine.TranscriptInnertube, fetchTranscriptViaPageScrape},
	{engine.TranscriptTimedText, func(ctx context.Context, id string, _ []string) (string, error) {
		return fetchTranscriptViaEngagementPanel(ctx, id)
	}},
	{engine.TranscriptInnertube, fetchTranscriptViaPlayer},
	{engine.TranscriptMirror, func(ctx context.Context, id string, _ []string) (string, error) {
		return fetchTranscriptViaMirror(ctx, id)
	}},
	{engine.TranscriptDownsub, func(ctx context.Context, id string, _ []string) (string, error) {
		return fetchTranscriptViaDownsub(ctx, id)
	}},
}

// minTranscriptChars rejects caption payloads that are only a heading or an error notice.
const minTranscriptChars = 100

// FetchTranscript returns the cleaned transcript of videoID, trying each source
// until one yields text. langs empty = engine.Cfg.TranscriptLangs.
func FetchTranscript(ctx context.Context, videoID string, langs []string) (engine.Transcript, error) {
	engine.IncrTranscriptRequests()
	if len(langs) == 0 {
		langs = engine.Cfg.TranscriptLangs
	}

	key := engine.CacheKey("transcript", videoID, strings.Join(langs, ","))
	if t, ok := engine.CacheLoadJSON[engine.Transcript](ctx, key); ok {
		return t, nil
	}

	var errs []error
	for _, step := range transcriptChain {
		if err := ctx.Err(); err != nil {
			return engine.Transcript{}, err
		}
		raw, err := step.fetch(ctx, videoID, langs)
		if err == nil {
			text := CleanTranscript(raw)
			if len(text) >= minTranscriptChars {
				t := engine.Transcript{VideoID: videoID, Text: text, Method: step.method, FetchedAt: time.Now().UTC()}
				engine.IncrTranscriptMethod(step.method)
				engine.CacheStoreJSON(ctx, key, t)
				return t, nil
			}
			err = fmt.Errorf("transcript too short (%d chars)", len(text))
		}
		slog.Debug("youtube: transcript source failed",
			slog.String("id", videoID), slog.String("method", step.method), slog.Any("error", err))
		errs = append(errs, fmt.Errorf("%s: %w", step.method, err))
	}

	engine.IncrTranscriptFailures()
	slog.Warn("youtube: no transcript", slog.String("id", videoID), slog.Int("sources", len(errs)))
	return engine.Transcript{}, fmt.Errorf("%w for %s: %w", engine.ErrNoTranscript, videoID, errors.Join(errs...))
}

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value is URL-encoded; /get_transcript expects raw base64.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments extracts plain text from a /get_transcript JSON response.
func parseTranscriptSegments(resp ytGetTranscriptResp) string {
	var sb strings.Builder
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				if run.Text != "" {
					if sb.Len() > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(run.Text)
				}
			}
		}
	}
	return sb.String()
}

// fetchTranscriptViaEngagementPanel fetches a transcript via:
//  1. POST /next → engagementPanels containing the transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
func fetchTranscriptViaEngagementPanel(ctx context.Context, videoID string) (string, error) {
	visitorData := generateVisitorData()

	nextData, err := postInnertube(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client":  ytWebClient(visitorData),
			"user":    map[string]bool{"enableSafetyMode": false},
			"request": map[string]bool{"useSsl": true},
		},
	}, webHeaders(visitorData))
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnertube(ctx, ytGetTranscriptPath, map[string]any{
		"params":  token,
		"context": map[string]any{"client": ytWebClient(visitorData)},
	}, webHeaders(visitorData))
	if err != nil {
		return "", fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	text := parseTranscriptSegments(transcriptResp)
	if text == "" {
		return "", errors.New("empty transcript segments")
	}
	return text, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences:
// manual track in a preferred language, then auto-generated, then any English track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	if err := engine.WaitYouTube(ctx); err != nil {
		return "", err
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", err
	}
	return parseTimedText(body)
}

// parseTimedText joins the lines of a timedtext XML document.
func parseTimedText(body []byte) (string, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}
	var sb strings.Builder
	for _, line := range tt.Lines {
		// Lines are entity-encoded twice (&amp;#39;), once for XML and once for HTML.
		text := engine.CleanHTML(html.UnescapeString(line.Text))
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}

// fetchTranscriptViaPlayer uses the ANDROID Innertube /player endpoint.
func fetchTranscriptViaPlayer(ctx context.Context, videoID string, langs []string) (string, error) {
	data, err := postInnertube(ctx, ytPlayerPath, playerReq{
		VideoID: videoID,
		Context: playerCtx{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, androidHeaders())
	if err != nil {
		return "", fmt.Errorf("android innertube: %w", err)
	}

	var pr playerResp
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", fmt.Errorf("decode player: %w", err)
	}
	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return "", fmt.Errorf("captions unavailable: %s", pr.PlayabilityStatus.Reason)
		}
		return "", errors.New("no captions in player response")
	}
	return fetchBestTrack(ctx, pr.tracks(), langs)
}

func fetchBestTrack(ctx context.Context, tracks []captionTrack, langs []string) (string, error) {
	if len(tracks) == 0 {
		return "", errors.New("no caption tracks")
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return "", errors.New("all caption tracks require PoToken")
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// fetchTranscriptViaPageScrape scrapes the watch page and follows the caption
// track URL embedded in ytInitialPlayerResponse.
func fetchTranscriptViaPageScrape(ctx context.Context, videoID string, langs []string) (string, error) {
	body, err := getPage(ctx, ytURL("/watch?v="+url.QueryEscape(videoID)), 6*1024*1024)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	jsonData := embeddedJSON(body, ytInitialPlayerResponseMarker)
	if jsonData == nil {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}
	var pr playerResp
	if err := json.Unmarshal(jsonData, &pr); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return fetchBestTrack(ctx, pr.tracks(), langs)
}

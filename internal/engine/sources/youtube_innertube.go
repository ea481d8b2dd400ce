package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// YouTube Innertube API: low-level constants, types, and HTTP primitives.
// Transcript logic lives in youtube_transcript.go, channel listing in youtube_channel.go.

const (
	ytPlayerPath        = "/youtubei/v1/player"
	ytNextPath          = "/youtubei/v1/next"
	ytGetTranscriptPath = "/youtubei/v1/get_transcript"
	ytWebVersion        = "2.20250222.10.00"
	ytAndroidVersion    = "20.10.38"
	ytAndroidUA         = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

// ytURL joins a path to the configured YouTube origin.
func ytURL(path string) string {
	return engine.Cfg.YouTubeURL + path
}

// --- ANDROID client types (/player endpoint) ---

type playerReq struct {
	VideoID        string    `json:"videoId"`
	Context        playerCtx `json:"context"`
	RacyCheckOk    bool      `json:"racyCheckOk"`
	ContentCheckOk bool      `json:"contentCheckOk"`
}

type playerCtx struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

// playerResp is the subset of /player (and ytInitialPlayerResponse) we read.
type playerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds string `json:"lengthSeconds"`
		ViewCount     string `json:"viewCount"`
		ChannelID     string `json:"channelId"`
	} `json:"videoDetails"`
}

func (p playerResp) tracks() []captionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// --- WEB client types (/next and /get_transcript endpoints) ---

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

// --- Timedtext XML types ---

type ytTimedText struct {
	Lines []ytLine `xml:"text"`
}

type ytLine struct {
	Text string `xml:",chardata"`
}

// --- /get_transcript response ---

type ytGetTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []struct {
										TranscriptSegmentRenderer *struct {
											Snippet struct {
												Runs []struct {
													Text string `json:"text"`
												} `json:"runs"`
											} `json:"snippet"`
										} `json:"transcriptSegmentRenderer"`
									} `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

func ytWebClient(visitorData string) ytWebClientCtx {
	return ytWebClientCtx{
		ClientName:    "WEB",
		ClientVersion: ytWebVersion,
		VisitorData:   visitorData,
		Hl:            "en",
		Gl:            "US",
	}
}

// postInnertube POSTs a JSON payload to an Innertube path with the given headers.
// Uses engine.Cfg.HTTPClient and engine.RetryHTTP for consistent retry/timeout behavior.
func postInnertube(ctx context.Context, path string, payload any, headers map[string]string) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := engine.WaitYouTube(ctx); err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytURL(path)+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube [%s]: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube [%s]: HTTP %d: %s", path, resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
}

// webHeaders are the headers of a desktop browser session.
func webHeaders(visitorData string) map[string]string {
	return map[string]string{
		"User-Agent":               engine.UserAgentChrome,
		"X-Youtube-Client-Name":    "1",
		"X-Youtube-Client-Version": ytWebVersion,
		"X-Goog-Visitor-Id":        visitorData,
		"Origin":                   "https://www.youtube.com",
		"Referer":                  "https://www.youtube.com/",
	}
}

func androidHeaders() map[string]string {
	return map[string]string{
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	}
}

// getPage GETs a YouTube HTML page with browser headers, capped at limit bytes.
func getPage(ctx context.Context, pageURL string, limit int64) ([]byte, error) {
	if err := engine.WaitYouTube(ctx); err != nil {
		return nil, err
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		// Skip the EU consent interstitial.
		req.Header.Set("Cookie", "CONSENT=YES+cb; SOCS=CAI")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// embeddedJSON finds marker in page and returns the JSON object that follows it.
func embeddedJSON(page []byte, marker string) []byte {
	idx := bytes.Index(page, []byte(marker))
	if idx < 0 {
		return nil
	}
	return extractJSON(page[idx+len(marker):])
}

package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

// Default remote endpoints. Overridable in Config, which tests do with httptest servers.
const (
	DefaultYouTubeURL        = "https://www.youtube.com"
	DefaultYouTubeDataAPIURL = "https://www.googleapis.com/youtube/v3"
	DefaultTranscriptMirror  = "https://youtubetranscript.com"
	DefaultDownsubURL        = "https://downsub.com"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMProvider        string // openai | gemini | none
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLM                LLMFunc // nil = heuristic analysis only

	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	TranscriptLangs       []string
	MaxTranscriptChars    int     // transcripts are cut to this many characters before analysis
	YouTubeRPS            float64 // requests per second to YouTube hosts, 0 = unlimited
	YouTubeBurst          int
	RetryAttempts         int           // 0 = library default
	RetryDelay            time.Duration // first backoff wait

	YouTubeURL          string
	YouTubeDataAPIURL   string
	TranscriptMirrorURL string
	DownsubURL          string

	Analysis analysis.Config

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, digest).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Empty endpoints and limits take their defaults.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.YouTubeURL == "" {
		c.YouTubeURL = DefaultYouTubeURL
	}
	if c.YouTubeDataAPIURL == "" {
		c.YouTubeDataAPIURL = DefaultYouTubeDataAPIURL
	}
	if c.TranscriptMirrorURL == "" {
		c.TranscriptMirrorURL = DefaultTranscriptMirror
	}
	if c.DownsubURL == "" {
		c.DownsubURL = DefaultDownsubURL
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = []string{"en", "en-US", "en-GB"}
	}
	if c.MaxTranscriptChars <= 0 {
		c.MaxTranscriptChars = 50000
	}
	if c.Analysis == (analysis.Config{}) {
		c.Analysis = analysis.DefaultConfig()
	}
	cfg = c
	Cfg = &cfg
	analyzer = analysis.NewAnalyzer(c.Analysis)
	initLimiter(c.YouTubeRPS, c.YouTubeBurst)
	initRetry(c.RetryAttempts, c.RetryDelay)
}

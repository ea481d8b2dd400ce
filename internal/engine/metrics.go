package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ChannelLookups       atomic.Int64
	VideosListed         atomic.Int64
	TranscriptRequests   atomic.Int64
	TranscriptFailures   atomic.Int64
	TranscriptInnertube  atomic.Int64
	TranscriptTimedText  atomic.Int64
	TranscriptMirror     atomic.Int64
	TranscriptDownsub    atomic.Int64
	LLMCalls             atomic.Int64
	LLMErrors            atomic.Int64
	Analyses             atomic.Int64
	AnalysesDegraded     atomic.Int64
	Summaries            atomic.Int64
	DigestsWritten       atomic.Int64
	EmailsSent           atomic.Int64
	YouTubeDataAPICalls  atomic.Int64
	YouTubeRateLimitWait atomic.Int64 // milliseconds spent waiting on the limiter
}

var metricKeys = []string{
	"channel_lookups", "videos_listed",
	"transcript_requests", "transcript_failures",
	"transcript_innertube", "transcript_timedtext", "transcript_mirror", "transcript_downsub",
	"llm_calls", "llm_errors",
	"analyses", "analyses_degraded", "summaries",
	"digests_written", "emails_sent",
	"youtube_data_api_calls", "youtube_rate_limit_wait_ms",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"channel_lookups":            metrics.ChannelLookups.Load(),
		"videos_listed":              metrics.VideosListed.Load(),
		"transcript_requests":        metrics.TranscriptRequests.Load(),
		"transcript_failures":        metrics.TranscriptFailures.Load(),
		"transcript_innertube":       metrics.TranscriptInnertube.Load(),
		"transcript_timedtext":       metrics.TranscriptTimedText.Load(),
		"transcript_mirror":          metrics.TranscriptMirror.Load(),
		"transcript_downsub":         metrics.TranscriptDownsub.Load(),
		"llm_calls":                  metrics.LLMCalls.Load(),
		"llm_errors":                 metrics.LLMErrors.Load(),
		"analyses":                   metrics.Analyses.Load(),
		"analyses_degraded":          metrics.AnalysesDegraded.Load(),
		"summaries":                  metrics.Summaries.Load(),
		"digests_written":            metrics.DigestsWritten.Load(),
		"emails_sent":                metrics.EmailsSent.Load(),
		"youtube_data_api_calls":     metrics.YouTubeDataAPICalls.Load(),
		"youtube_rate_limit_wait_ms": metrics.YouTubeRateLimitWait.Load(),
		"cache_hits":                 hits,
		"cache_misses":               misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrChannelLookups()     { metrics.ChannelLookups.Add(1) }
func IncrVideosListed(n int)  { metrics.VideosListed.Add(int64(n)) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptFailures() { metrics.TranscriptFailures.Add(1) }
func IncrYouTubeDataAPI()     { metrics.YouTubeDataAPICalls.Add(1) }

// IncrTranscriptMethod counts a transcript obtained by the named method.
func IncrTranscriptMethod(method string) {
	switch method {
	case TranscriptInnertube:
		metrics.TranscriptInnertube.Add(1)
	case TranscriptTimedText:
		metrics.TranscriptTimedText.Add(1)
	case TranscriptMirror:
		metrics.TranscriptMirror.Add(1)
	case TranscriptDownsub:
		metrics.TranscriptDownsub.Add(1)
	}
}

// Incrementors for digest/ and report/.
func IncrDigestsWritten() { metrics.DigestsWritten.Add(1) }
func IncrEmailsSent()     { metrics.EmailsSent.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 30*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

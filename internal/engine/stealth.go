package engine

import (
	"context"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// DefaultRetryConfig is the retry policy for YouTube and the transcript mirrors.
// Init derives it from Config.RetryAttempts and Config.RetryDelay.
var DefaultRetryConfig = stealth.DefaultRetryConfig

func initRetry(attempts int, delay time.Duration) {
	rc := stealth.DefaultRetryConfig
	if attempts > 0 {
		rc.MaxRetries = attempts
	}
	if delay > 0 {
		rc.InitialWait = delay
		rc.MaxWait = max(rc.MaxWait, 4*delay)
	}
	DefaultRetryConfig = rc
}

// ChromeHeaders returns desktop Chrome request headers.
func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }

// RandomUserAgent rotates user agents for scraped page requests.
func RandomUserAgent() string { return stealth.RandomUserAgent() }

// RetryHTTP retries fn with backoff on transport errors and retryable statuses.
func RetryHTTP(ctx context.Context, rc stealth.RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, rc, fn)
}

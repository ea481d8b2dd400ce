package engine

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// youtubeLimiter paces requests to YouTube hosts. nil = unlimited.
var youtubeLimiter atomic.Pointer[rate.Limiter]

func initLimiter(rps float64, burst int) {
	if rps <= 0 {
		youtubeLimiter.Store(nil)
		return
	}
	if burst <= 0 {
		burst = 1
	}
	youtubeLimiter.Store(rate.NewLimiter(rate.Limit(rps), burst))
}

// WaitYouTube blocks until the next YouTube request may be sent.
func WaitYouTube(ctx context.Context) error {
	l := youtubeLimiter.Load()
	if l == nil {
		return nil
	}
	start := time.Now()
	err := l.Wait(ctx)
	metrics.YouTubeRateLimitWait.Add(time.Since(start).Milliseconds())
	return err
}

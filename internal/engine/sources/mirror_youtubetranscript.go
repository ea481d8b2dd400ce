package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// fetchTranscriptViaMirror reads the transcript rendered by youtubetranscript.com.
func fetchTranscriptViaMirror(ctx context.Context, videoID string) (string, error) {
	pageURL := engine.Cfg.TranscriptMirrorURL + "/?v=" + url.QueryEscape(videoID)
	body, err := getMirror(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("transcript mirror: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transcript mirror: parse: %w", err)
	}
	sel := doc.Find("div.transcript, #transcript").First()
	if sel.Length() == 0 {
		sel = doc.Find("pre").First()
	}
	if sel.Length() == 0 {
		return "", fmt.Errorf("transcript mirror: no transcript element")
	}

	sel.Find("script, style, button").Remove()
	inner, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("transcript mirror: %w", err)
	}
	text, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		text = sel.Text()
	}
	text = strings.TrimSpace(stripMarkdown(text))
	if len(text) < minTranscriptChars {
		return "", fmt.Errorf("transcript mirror: transcript too short (%d chars)", len(text))
	}
	return text, nil
}

// stripMarkdown drops the emphasis and escape characters html-to-markdown adds,
// leaving prose.
func stripMarkdown(md string) string {
	r := strings.NewReplacer(`\`, "", "**", "", "__", "", "`", "")
	lines := strings.Split(r.Replace(md), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#>-* ")
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// getMirror GETs a third-party page with a rotated browser User-Agent.
func getMirror(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range engine.ChromeHeaders() {
			// net/http only decompresses transparently when it set the header itself.
			if strings.EqualFold(k, "accept-encoding") {
				continue
			}
			req.Header.Set(k, v)
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
}

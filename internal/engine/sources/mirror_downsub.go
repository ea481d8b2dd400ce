package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// fetchTranscriptViaDownsub asks downsub for subtitle links and parses the first
// English SRT or TXT file it offers.
func fetchTranscriptViaDownsub(ctx context.Context, videoID string) (string, error) {
	base := engine.Cfg.DownsubURL
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	page, err := getMirror(ctx, base+"/?url="+url.QueryEscape(watchURL))
	if err != nil {
		return "", fmt.Errorf("downsub: %w", err)
	}

	links, err := subtitleLinks(page)
	if err != nil {
		return "", fmt.Errorf("downsub: %w", err)
	}
	if len(links) == 0 {
		return "", errors.New("downsub: no English subtitle links")
	}

	href := links[0]
	if strings.HasPrefix(href, "/") {
		href = base + href
	}
	data, err := getMirror(ctx, href)
	if err != nil {
		return "", fmt.Errorf("downsub: subtitle file: %w", err)
	}
	return ParseSRT(string(data)), nil
}

// subtitleLinks returns hrefs of anchors pointing at .srt or .txt files whose
// URL mentions English.
func subtitleLinks(page []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				lower := strings.ToLower(href)
				path := lower
				if i := strings.IndexAny(path, "?#"); i >= 0 {
					path = path[:i]
				}
				if (strings.HasSuffix(path, ".srt") || strings.HasSuffix(path, ".txt")) && strings.Contains(lower, "en") {
					links = append(links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

package sources

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	wsRE          = regexp.MustCompile(`\s+`)
	bracketRE     = regexp.MustCompile(`\[[^\]]*\]`) // [Music], [Applause]
	parenRE       = regexp.MustCompile(`\([^)]*\)`)  // (inaudible), (laughs)
	spaceBeforeRE = regexp.MustCompile(`\s+([.!?])`)
	sentenceGapRE = regexp.MustCompile(`([.!?])\s*([A-Z])`)
	srtTimingRE   = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s*-->`)
	digitsRE      = regexp.MustCompile(`^\d+$`)
	videoIDRE     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	videoIDURLRE  = regexp.MustCompile(`(?:v=|/|embed/|youtu\.be/)([A-Za-z0-9_-]{11})`)
	handleRE      = regexp.MustCompile(`^[A-Za-z0-9._-]{3,100}$`)
)

// CleanTranscript normalises caption text: drops bracketed and parenthesised
// annotations, collapses whitespace and fixes spacing around sentence ends.
func CleanTranscript(s string) string {
	s = wsRE.ReplaceAllString(strings.TrimSpace(s), " ")
	s = bracketRE.ReplaceAllString(s, "")
	s = parenRE.ReplaceAllString(s, "")
	s = spaceBeforeRE.ReplaceAllString(s, "$1")
	s = sentenceGapRE.ReplaceAllString(s, "$1 $2")
	s = wsRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseSRT returns the spoken text of an SRT (or plain text) subtitle file,
// dropping cue numbers and timing lines.
func ParseSRT(srt string) string {
	srt = strings.TrimPrefix(srt, "\ufeff")
	var parts []string
	for _, line := range strings.Split(strings.ReplaceAll(srt, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || digitsRE.MatchString(line) || srtTimingRE.MatchString(line) {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// ExtractVideoID returns the 11-character video ID of a YouTube URL, or s itself
// when it already is an ID. Returns "" when none is found.
func ExtractVideoID(s string) string {
	s = strings.TrimSpace(s)
	if videoIDRE.MatchString(s) {
		return s
	}
	if u, err := url.Parse(s); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		host = strings.TrimPrefix(host, "m.")
		switch host {
		case "youtube.com", "music.youtube.com":
			if v := u.Query().Get("v"); videoIDRE.MatchString(v) {
				return v
			}
			for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
				if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
					if id, _, _ := strings.Cut(rest, "/"); videoIDRE.MatchString(id) {
						return id
					}
				}
			}
		case "youtu.be":
			if id := strings.Trim(u.Path, "/"); videoIDRE.MatchString(id) {
				return id
			}
		}
	}
	if m := videoIDURLRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return ""
}

// NormalizeHandle returns a channel handle without "@", accepting "@name",
// "name" and channel URLs such as https://www.youtube.com/@name/videos.
// Returns "" for input that cannot be a handle.
func NormalizeHandle(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/@"); i >= 0 {
		s = s[i+2:]
		if j := strings.IndexAny(s, "/?#"); j >= 0 {
			s = s[:j]
		}
	}
	s = strings.TrimPrefix(s, "@")
	if !handleRE.MatchString(s) {
		return ""
	}
	return s
}

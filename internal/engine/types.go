package engine

import (
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

// --- Core domain types ---

// Video is one upload of a channel.
type Video struct {
	ID          string    `json:"video_id"`
	Title       string    `json:"title"`
	Channel     string    `json:"uploader,omitempty"` // display name
	Handle      string    `json:"channel_handle"`
	URL         string    `json:"url"`
	Published   time.Time `json:"upload_date,omitzero"`
	Duration    int       `json:"duration,omitempty"` // seconds
	Views       int64     `json:"view_count,omitempty"`
	Description string    `json:"description,omitempty"`
}

// WatchURL returns the canonical watch URL of the video.
func (v Video) WatchURL() string {
	if v.URL != "" {
		return v.URL
	}
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Transcript sources, in the order FetchTranscript tries them.
const (
	TranscriptInnertube = "innertube"  // caption track from the watch page or player API
	TranscriptTimedText = "engagement" // transcript engagement panel
	TranscriptMirror    = "youtubetranscript"
	TranscriptDownsub   = "downsub"
	TranscriptLocal     = "file" // read from disk
)

// Summary styles.
const (
	StyleBlog     = "blog"
	StyleInsights = "insights"
	StyleBrief    = "brief"
)

// Transcript is the plain text of a video's captions.
type Transcript struct {
	VideoID   string    `json:"video_id"`
	Text      string    `json:"text"`
	Method    string    `json:"method"` // which source produced it
	FetchedAt time.Time `json:"fetched_at"`
}

// VideoAnalysis is the result of analysing one video's transcript.
type VideoAnalysis struct {
	Video            Video           `json:"video_metadata"`
	Record           analysis.Record `json:"analysis"`
	Status           analysis.Status `json:"status"`
	Method           string          `json:"method"`
	Segments         int             `json:"segments"`
	Fallbacks        []string        `json:"fallbacks,omitempty"`
	Errors           []string        `json:"errors,omitempty"`
	TranscriptChars  int             `json:"transcript_chars"`
	TranscriptMethod string          `json:"transcript_method,omitempty"`
	TranscriptPath   string          `json:"transcript_path,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	AnalyzedAt       time.Time       `json:"analyzed_at"`
}

// ChannelStatus reports how processing one channel went.
type ChannelStatus struct {
	Handle   string   `json:"handle"`
	Title    string   `json:"title,omitempty"`
	Videos   int      `json:"videos"`
	Analyzed int      `json:"analyzed"`
	Skipped  int      `json:"skipped,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// OK reports whether the channel produced at least one analysis without errors.
func (s ChannelStatus) OK() bool { return len(s.Errors) == 0 && s.Analyzed > 0 }

// RunReport is the outcome of one digest run.
type RunReport struct {
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	DryRun   bool            `json:"dry_run,omitempty"`
	Channels []ChannelStatus `json:"channels"`
	Videos   []Video         `json:"videos,omitempty"` // discovered videos (dry runs)
	Analyses []VideoAnalysis `json:"analyses"`
}

// ProcessedVideo is one row of the processing history.
type ProcessedVideo struct {
	VideoID     string    `json:"video_id"`
	Channel     string    `json:"channel"`
	Title       string    `json:"title"`
	Path        string    `json:"path,omitempty"`
	Method      string    `json:"method,omitempty"`
	Status      string    `json:"status"`
	Confidence  float64   `json:"confidence"`
	ProcessedAt time.Time `json:"processed_at"`
}

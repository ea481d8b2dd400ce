package engine

import "github.com/anatolykoptev/go_podcast/internal/engine/analysis"

// --- MCP tool inputs ---

type DigestInput struct {
	Channels  []string `json:"channels,omitempty" jsonschema:"Channel handles (e.g. @lexfridman). Default: enabled channels from channels.yaml"`
	Days      int      `json:"days,omitempty" jsonschema:"Days to look back for videos (default: 7)"`
	Limit     int      `json:"limit,omitempty" jsonschema:"Max videos per channel (default: 1)"`
	DryRun    bool     `json:"dry_run,omitempty" jsonschema:"Only list what would be processed"`
	Summaries bool     `json:"summaries,omitempty" jsonschema:"Also write a narrative summary per video"`
}

type ChannelVideosInput struct {
	Channel string `json:"channel" jsonschema:"Channel handle, with or without @"`
	Days    int    `json:"days,omitempty" jsonschema:"Days to look back (default: 7, negative = any age)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Max videos (default: 5, max: 50)"`
}

type ChannelsInput struct {
	Category    string `json:"category,omitempty" jsonschema:"Only channels of this category"`
	EnabledOnly bool   `json:"enabled_only,omitempty" jsonschema:"Only enabled channels, in processing order"`
}

type TranscriptInput struct {
	Video     string   `json:"video" jsonschema:"YouTube URL or 11-character video ID"`
	Languages []string `json:"languages,omitempty" jsonschema:"Preferred caption languages (default: en)"`
	MaxChars  int      `json:"max_chars,omitempty" jsonschema:"Truncate the returned text (default: 20000)"`
}

type AnalyzeInput struct {
	Text      string `json:"text,omitempty" jsonschema:"Transcript text to analyse"`
	Video     string `json:"video,omitempty" jsonschema:"YouTube URL or ID; the transcript is fetched when text is empty"`
	Title     string `json:"title,omitempty" jsonschema:"Episode title, used in the prompt and report"`
	Heuristic bool   `json:"heuristic,omitempty" jsonschema:"Skip the LLM and use pattern extraction only"`
}

type SummarizeInput struct {
	Text  string `json:"text,omitempty" jsonschema:"Transcript text"`
	Video string `json:"video,omitempty" jsonschema:"YouTube URL or ID; the transcript is fetched when text is empty"`
	Title string `json:"title,omitempty" jsonschema:"Episode title"`
	Style string `json:"style,omitempty" jsonschema:"Summary style: blog (default), insights, brief"`
}

type HistoryInput struct {
	Channel string `json:"channel,omitempty" jsonschema:"Filter by channel handle"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Max entries (default: 20)"`
}

// --- MCP tool outputs ---

type DigestOutput struct {
	Markdown string    `json:"markdown"`
	Path     string    `json:"path,omitempty"`
	Report   RunReport `json:"report"`
}

type ChannelVideosOutput struct {
	Channel string  `json:"channel"`
	Videos  []Video `json:"videos"`
}

type ChannelEntry struct {
	Handle        string `json:"handle"`
	DisplayName   string `json:"display_name"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	Enabled       bool   `json:"enabled"`
	LastProcessed string `json:"last_processed,omitempty"`
}

type ChannelsOutput struct {
	Channels []ChannelEntry `json:"channels"`
}

type TranscriptOutput struct {
	VideoID   string `json:"video_id"`
	Method    string `json:"method"`
	Chars     int    `json:"chars"`
	Truncated bool   `json:"truncated"`
	Text      string `json:"text"`
}

type AnalyzeOutput struct {
	VideoID   string          `json:"video_id,omitempty"`
	Record    analysis.Record `json:"analysis"`
	Status    analysis.Status `json:"status"`
	Method    string          `json:"method"`
	Segments  int             `json:"segments"`
	Fallbacks []string        `json:"fallbacks,omitempty"`
	Markdown  string          `json:"markdown"`
}

type SummarizeOutput struct {
	Style   string `json:"style"`
	Method  string `json:"method"` // llm | template
	Summary string `json:"summary"`
}

type HistoryOutput struct {
	Entries []ProcessedVideo `json:"entries"`
}

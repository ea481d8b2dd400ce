package channels

import (
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

// Settings mirrors settings.yaml.
type Settings struct {
	Processing Processing `yaml:"processing"`
	Output     Output     `yaml:"output"`
	AIAnalysis AIAnalysis `yaml:"ai_analysis"`
	Analysis   Analysis   `yaml:"analysis"`
	Email      Email      `yaml:"email"`
	Logging    Logging    `yaml:"logging"`
}

type Processing struct {
	MaxTranscriptLength int `yaml:"max_transcript_length"`
	ChunkSize           int `yaml:"chunk_size"`
	ChunkOverlap        int `yaml:"chunk_overlap"`
	ConcurrentChannels  int `yaml:"concurrent_channels"`
	RetryAttempts       int `yaml:"retry_attempts"`
	RetryDelay          int `yaml:"retry_delay"` // seconds
}

type Output struct {
	IncludeTimestamps    bool   `yaml:"include_timestamps"`
	IncludeVideoMetadata bool   `yaml:"include_video_metadata"`
	PDFStyling           string `yaml:"pdf_styling"`
	FilenameFormat       string `yaml:"filename_format"`
	MaxSummaryLength     int    `yaml:"max_summary_length"`
}

type AIAnalysis struct {
	FocusAreas          []string `yaml:"focus_areas"`
	SummaryLength       string   `yaml:"summary_length"`
	IncludeQuotes       bool     `yaml:"include_quotes"`
	ExtractTimestamps   bool     `yaml:"extract_timestamps"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
}

// Analysis tunes the extraction pipeline; zero values keep the built-in defaults.
type Analysis struct {
	DuplicateThreshold float64       `yaml:"duplicate_threshold"`
	SegmentCaps        analysis.Caps `yaml:"segment_caps"`
	FinalCaps          analysis.Caps `yaml:"final_caps"`
}

// Email configures digest delivery. The SMTP password comes from the environment.
type Email struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	Username string   `yaml:"username"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type Logging struct {
	Level     string `yaml:"level"`
	LogToFile bool   `yaml:"log_to_file"`
	LogFile   string `yaml:"log_file"`
}

func defaultSettings() Settings {
	d := analysis.DefaultConfig()
	return Settings{
		Processing: Processing{
			MaxTranscriptLength: 50000,
			ChunkSize:           d.Chunk.MaxChunkSize,
			ChunkOverlap:        d.Chunk.OverlapSize,
			ConcurrentChannels:  3,
			RetryAttempts:       3,
			RetryDelay:          5,
		},
		Output: Output{
			IncludeTimestamps:    true,
			IncludeVideoMetadata: true,
			PDFStyling:           "professional",
			FilenameFormat:       "podcast-digest-{date}.md",
			MaxSummaryLength:     2000,
		},
		AIAnalysis: AIAnalysis{
			FocusAreas:          []string{"insights", "alpha", "actionable_takeaways"},
			SummaryLength:       "detailed",
			IncludeQuotes:       true,
			ConfidenceThreshold: 0.7,
		},
		Analysis: Analysis{
			DuplicateThreshold: d.DuplicateThreshold,
			SegmentCaps:        d.SegmentCaps,
			FinalCaps:          d.FinalCaps,
		},
		Email:   Email{SMTPPort: 587},
		Logging: Logging{Level: "INFO", LogFile: "logs/podcast_summary.log"},
	}
}

// AnalysisConfig applies the processing and analysis settings to the
// pipeline defaults.
func (s Settings) AnalysisConfig() analysis.Config {
	c := analysis.DefaultConfig()
	if s.Processing.ChunkSize > 0 {
		c.Chunk.MaxChunkSize = s.Processing.ChunkSize
	}
	if s.Processing.ChunkOverlap > 0 {
		c.Chunk.OverlapSize = s.Processing.ChunkOverlap
	}
	if s.Analysis.DuplicateThreshold > 0 {
		c.DuplicateThreshold = s.Analysis.DuplicateThreshold
	}
	if s.Analysis.SegmentCaps != (analysis.Caps{}) {
		c.SegmentCaps = s.Analysis.SegmentCaps
	}
	if s.Analysis.FinalCaps != (analysis.Caps{}) {
		c.FinalCaps = s.Analysis.FinalCaps
	}
	return c
}

// lookup walks a dotted path through a decoded YAML document.
func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

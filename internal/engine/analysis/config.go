package analysis

// Category names used as keys throughout the analysis record.
const (
	MainAlpha           = "main_alpha"
	KeyInsights         = "key_insights"
	ActionableTakeaways = "actionable_takeaways"
	KeyQuotes           = "key_quotes"
)

// Categories lists the insight categories in report order.
var Categories = []string{MainAlpha, KeyInsights, ActionableTakeaways, KeyQuotes}

// ContinuationMarker separates injected overlap text from a segment's own content.
const ContinuationMarker = "\n\n[... continuing ...]\n\n"

// ChunkConfig controls how transcripts are split into segments.
// Sizes are in characters (runes).
type ChunkConfig struct {
	MaxChunkSize    int  // default 8000
	OverlapSize     int  // default 500; 0 disables overlap
	PreserveContext bool // paragraph/sentence aware splitting; false = sliding window
}

// Caps bounds the number of strings kept per category.
type Caps struct {
	MainAlpha           int `yaml:"main_alpha" json:"main_alpha"`
	KeyInsights         int `yaml:"key_insights" json:"key_insights"`
	ActionableTakeaways int `yaml:"actionable_takeaways" json:"actionable_takeaways"`
	KeyQuotes           int `yaml:"key_quotes" json:"key_quotes"`
}

// For returns the cap for a category, 0 for unknown categories.
func (c Caps) For(category string) int {
	switch category {
	case MainAlpha:
		return c.MainAlpha
	case KeyInsights:
		return c.KeyInsights
	case ActionableTakeaways:
		return c.ActionableTakeaways
	case KeyQuotes:
		return c.KeyQuotes
	}
	return 0
}

// Config is the full configuration of the analysis pipeline.
type Config struct {
	Chunk ChunkConfig

	// DuplicateThreshold is the word-overlap ratio above which two
	// candidates count as the same statement. Default 0.8.
	DuplicateThreshold float64

	// SegmentCaps bounds candidates accepted from one segment.
	SegmentCaps Caps
	// FinalCaps bounds the merged record.
	FinalCaps Caps
}

// Defaults.
const (
	DefaultMaxChunkSize       = 8000
	DefaultOverlapSize        = 500
	DefaultDuplicateThreshold = 0.8
	sentenceSearchWindow      = 200
	maxTopics                 = 5
)

// DefaultChunkConfig returns the chunking defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:    DefaultMaxChunkSize,
		OverlapSize:     DefaultOverlapSize,
		PreserveContext: true,
	}
}

// DefaultConfig returns a Config populated with the standard defaults.
func DefaultConfig() Config {
	return Config{
		Chunk:              DefaultChunkConfig(),
		DuplicateThreshold: DefaultDuplicateThreshold,
		SegmentCaps: Caps{
			MainAlpha:           3,
			KeyInsights:         5,
			ActionableTakeaways: 5,
			KeyQuotes:           3,
		},
		FinalCaps: Caps{
			MainAlpha:           5,
			KeyInsights:         6,
			ActionableTakeaways: 6,
			KeyQuotes:           4,
		},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Chunk.MaxChunkSize <= 0 {
		c.Chunk.MaxChunkSize = d.Chunk.MaxChunkSize
	}
	if c.Chunk.OverlapSize < 0 {
		c.Chunk.OverlapSize = 0
	}
	if c.DuplicateThreshold <= 0 || c.DuplicateThreshold > 1 {
		c.DuplicateThreshold = d.DuplicateThreshold
	}
	if c.SegmentCaps == (Caps{}) {
		c.SegmentCaps = d.SegmentCaps
	}
	if c.FinalCaps == (Caps{}) {
		c.FinalCaps = d.FinalCaps
	}
	return c
}

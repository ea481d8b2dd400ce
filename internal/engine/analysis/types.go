package analysis

// Status reports how a pipeline step finished.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded" // produced output using a fallback
	StatusFailed   Status = "failed"   // output is a placeholder
)

// worse returns the more severe of two statuses.
func worse(a, b Status) Status {
	rank := func(s Status) int {
		switch s {
		case StatusFailed:
			return 2
		case StatusDegraded:
			return 1
		}
		return 0
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// Segment is a bounded slice of a transcript.
type Segment struct {
	Index      int    `json:"index"` // 1-based
	Text       string `json:"text"`
	Start      int    `json:"start"` // byte offset of the core text in the transcript
	End        int    `json:"end"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	Complete   bool   `json:"is_complete"`
	HasOverlap bool   `json:"has_overlap"`
	OverlapLen int    `json:"overlap_length"` // runes of injected overlap text, marker excluded
	Err        string `json:"error,omitempty"`

	coreStart int // byte offset in Text where the segment's own content begins
}

// Core returns the segment text without injected overlap.
func (s Segment) Core() string {
	if s.coreStart <= 0 || s.coreStart > len(s.Text) {
		return s.Text
	}
	return s.Text[s.coreStart:]
}

// Candidate is a span extracted from a segment.
type Candidate struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Segment  int    `json:"segment"`
}

// Record is the analysis of one transcript, or of one segment before merging.
type Record struct {
	MainAlpha           []string `json:"main_alpha"`
	KeyInsights         []string `json:"key_insights"`
	ActionableTakeaways []string `json:"actionable_takeaways"`
	KeyQuotes           []string `json:"key_quotes"`
	ContentCategory     string   `json:"content_category"`
	MainTopics          []string `json:"main_topics"`
	Confidence          float64  `json:"confidence_score"`
}

// List returns the strings stored for category.
func (r *Record) List(category string) []string {
	switch category {
	case MainAlpha:
		return r.MainAlpha
	case KeyInsights:
		return r.KeyInsights
	case ActionableTakeaways:
		return r.ActionableTakeaways
	case KeyQuotes:
		return r.KeyQuotes
	}
	return nil
}

// SetList replaces the strings stored for category.
func (r *Record) SetList(category string, items []string) {
	switch category {
	case MainAlpha:
		r.MainAlpha = items
	case KeyInsights:
		r.KeyInsights = items
	case ActionableTakeaways:
		r.ActionableTakeaways = items
	case KeyQuotes:
		r.KeyQuotes = items
	}
}

// Empty reports whether no category holds any item.
func (r *Record) Empty() bool {
	for _, c := range Categories {
		if len(r.List(c)) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	for _, c := range Categories {
		if src := r.List(c); src != nil {
			out.SetList(c, append([]string(nil), src...))
		}
	}
	if r.MainTopics != nil {
		out.MainTopics = append([]string(nil), r.MainTopics...)
	}
	return out
}

package analysis

import (
	"log/slog"
)

// Analysis methods reported in Outcome.Method.
const (
	MethodHeuristic = "heuristic"
	MethodLLM       = "llm"
	MethodMixed     = "mixed"
)

// SegmentFunc analyses one segment with an external model. When it returns
// an error the segment is analysed heuristically instead.
type SegmentFunc func(seg Segment) (Record, error)

// Outcome is the analysis of a whole transcript.
type Outcome struct {
	Record    Record   `json:"record"`
	Status    Status   `json:"status"`
	Method    string   `json:"method"`
	Segments  int      `json:"segments"`
	Fallbacks []string `json:"fallbacks,omitempty"` // categories filled with placeholder text
	Errors    []string `json:"errors,omitempty"`
}

// Analyzer runs chunking, extraction and merging for one transcript at a time.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	cfg       Config
	chunker   *Chunker
	extractor *Extractor
	merger    *Merger
}

// NewAnalyzer builds an Analyzer; zero fields of cfg take their defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	cfg = cfg.withDefaults()
	return &Analyzer{
		cfg:       cfg,
		chunker:   NewChunker(cfg.Chunk),
		extractor: NewExtractor(cfg.SegmentCaps),
		merger:    NewMerger(cfg.DuplicateThreshold, cfg.FinalCaps),
	}
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Chunk exposes the analyzer's chunker.
func (a *Analyzer) Chunk(transcript string) ChunkResult { return a.chunker.Chunk(transcript) }

// Analyze analyses transcript with the heuristic extractor only.
func (a *Analyzer) Analyze(transcript string) Outcome {
	return a.AnalyzeWith(transcript, nil)
}

// AnalyzeWith analyses transcript, asking fn for each segment when fn is non-nil.
func (a *Analyzer) AnalyzeWith(transcript string, fn SegmentFunc) Outcome {
	out := Outcome{Status: StatusOK}

	chunks := a.chunker.Chunk(transcript)
	if chunks.Err != nil {
		out.Errors = append(out.Errors, chunks.Err.Error())
		out.Status = StatusDegraded
	}
	out.Segments = len(chunks.Segments)

	partials := make([]Record, 0, len(chunks.Segments))
	external, heuristic := 0, 0
	for _, seg := range chunks.Segments {
		if fn != nil {
			rec, err := fn(seg)
			if err == nil {
				partials = append(partials, a.normalize(rec))
				external++
				continue
			}
			slog.Warn("analysis: segment analyzer failed, using heuristics",
				slog.Int("segment", seg.Index), slog.Any("error", err))
			out.Errors = append(out.Errors, err.Error())
			out.Status = worse(out.Status, StatusDegraded)
		}
		rec, st, errs := a.SegmentRecord(seg)
		for _, err := range errs {
			out.Errors = append(out.Errors, err.Error())
		}
		out.Status = worse(out.Status, st)
		partials = append(partials, rec)
		heuristic++
	}

	merged := a.merger.Merge(partials)
	if merged.Err != nil {
		out.Errors = append(out.Errors, merged.Err.Error())
	}
	out.Status = worse(out.Status, merged.Status)
	out.Record = merged.Record

	out.Fallbacks = a.fillFallbacks(&out.Record)
	if len(out.Fallbacks) > 0 {
		out.Status = worse(out.Status, StatusDegraded)
	}

	switch {
	case external == 0:
		out.Method = MethodHeuristic
	case heuristic == 0:
		out.Method = MethodLLM
	default:
		out.Method = MethodMixed
	}
	return out
}

// SegmentRecord builds the heuristic partial record for one segment.
func (a *Analyzer) SegmentRecord(seg Segment) (Record, Status, []error) {
	res := a.extractor.Extract(seg)
	var rec Record
	for _, c := range Categories {
		rec.SetList(c, res.Texts(c))
	}
	text := seg.Core()
	rec.ContentCategory, rec.MainTopics = Classify(text)
	rec.Confidence = confidence(text, rec)
	return rec, res.Status, res.Errors
}

// normalize bounds an externally produced record to the final caps.
func (a *Analyzer) normalize(rec Record) Record {
	for _, c := range Categories {
		items := make([]string, 0, len(rec.List(c)))
		for _, s := range rec.List(c) {
			if s = normalizeSpace(s); s != "" {
				items = append(items, s)
			}
		}
		if limit := a.cfg.FinalCaps.For(c); limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		rec.SetList(c, items)
	}
	if rec.ContentCategory == "" {
		rec.ContentCategory = "general"
	}
	if len(rec.MainTopics) > maxTopics {
		rec.MainTopics = rec.MainTopics[:maxTopics]
	}
	switch {
	case rec.Confidence < 0:
		rec.Confidence = 0
	case rec.Confidence > 1:
		rec.Confidence = 1
	}
	return rec
}

// fillFallbacks puts placeholder text into empty categories and reports which.
func (a *Analyzer) fillFallbacks(rec *Record) []string {
	var filled []string
	for _, c := range Categories {
		if len(rec.List(c)) > 0 {
			continue
		}
		rec.SetList(c, FallbackItems(c, rec.ContentCategory))
		filled = append(filled, c)
	}
	if rec.ContentCategory == "" {
		rec.ContentCategory = "general"
	}
	if len(rec.MainTopics) == 0 {
		rec.MainTopics = []string{"general"}
	}
	return filled
}

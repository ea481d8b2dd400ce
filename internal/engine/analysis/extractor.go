package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var spaceRunRe = regexp.MustCompile(`\s+`)

// ExtractResult holds the candidates found in one segment.
type ExtractResult struct {
	Candidates map[string][]Candidate
	Status     Status
	Errors     []error
}

// Texts returns the candidate strings for category in discovery order.
func (r ExtractResult) Texts(category string) []string {
	cands := r.Candidates[category]
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Text)
	}
	return out
}

// Extractor scans segments with a table of pattern families.
type Extractor struct {
	families []Family
	caps     Caps
}

// NewExtractor returns an Extractor using the built-in families.
// caps bounds the accepted candidates per category and segment.
func NewExtractor(caps Caps) *Extractor {
	return NewExtractorWith(DefaultFamilies(), caps)
}

// NewExtractorWith returns an Extractor over custom families.
func NewExtractorWith(families []Family, caps Caps) *Extractor {
	return &Extractor{families: families, caps: caps}
}

// Extract scans the segment's own content (injected overlap excluded).
// A family that fails yields no candidates and marks the result degraded.
func (e *Extractor) Extract(seg Segment) ExtractResult {
	res := ExtractResult{
		Candidates: make(map[string][]Candidate, len(e.families)),
		Status:     StatusOK,
	}
	text := seg.Core()
	for _, fam := range e.families {
		texts, err := e.scan(fam, text)
		if err != nil {
			slog.Warn("extractor: pattern family failed",
				slog.String("category", fam.Category),
				slog.Int("segment", seg.Index),
				slog.Any("error", err))
			res.Errors = append(res.Errors, err)
			res.Status = StatusDegraded
			continue
		}
		cands := make([]Candidate, 0, len(texts))
		for _, t := range texts {
			cands = append(cands, Candidate{Category: fam.Category, Text: t, Segment: seg.Index})
		}
		res.Candidates[fam.Category] = append(res.Candidates[fam.Category], cands...)
	}
	return res
}

func (e *Extractor) scan(fam Family, text string) (out []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("extract %s: %v", fam.Category, r)
		}
	}()

	seen := make(map[string]bool)
	primary := 0
	for _, p := range fam.Patterns {
		if p.Secondary && primary > 0 {
			continue
		}
		for _, m := range p.Re.FindAllStringSubmatch(text, p.ScanCap) {
			s := normalizeSpace(matchText(m))
			if !p.accepts(s) {
				continue
			}
			if p.Format != nil {
				s = p.Format(s)
			} else {
				s = capitalize(s)
			}
			key := dedupKey(s, fam.DedupPrefix)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
			if !p.Secondary {
				primary++
			}
		}
	}
	if limit := e.caps.For(fam.Category); limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p Pattern) accepts(s string) bool {
	n := utf8.RuneCountInString(s)
	if n <= p.MinLen || (p.MaxLen > 0 && n >= p.MaxLen) {
		return false
	}
	for _, stop := range p.Stop {
		if strings.EqualFold(s, stop) {
			return false
		}
	}
	if len(p.Vocab) == 0 {
		return true
	}
	lower := strings.ToLower(s)
	for _, term := range p.Vocab {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// matchText returns the first non-empty capture group, or the whole match.
func matchText(m []string) string {
	for _, g := range m[1:] {
		if strings.TrimSpace(g) != "" {
			return g
		}
	}
	return m[0]
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func dedupKey(s string, prefix int) string {
	k := strings.ToLower(strings.TrimSpace(s))
	if prefix > 0 && utf8.RuneCountInString(k) > prefix {
		k = string([]rune(k)[:prefix])
	}
	return k
}

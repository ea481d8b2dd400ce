package analysis

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Ranker collapses near-duplicate statements and orders the survivors.
type Ranker struct {
	// Threshold is the overlap ratio above which two statements are duplicates.
	Threshold float64
}

// NewRanker returns a Ranker; a threshold outside (0,1] uses the default.
func NewRanker(threshold float64) Ranker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDuplicateThreshold
	}
	return Ranker{Threshold: threshold}
}

// WordOverlap returns |A∩B| / max(|A|,|B|) over the lower-cased word sets of a and b.
// Either set being empty gives 0.
func WordOverlap(a, b string) float64 {
	return overlap(wordSet(a), wordSet(b))
}

// Dedup drops every item that duplicates an earlier accepted item.
func (r Ranker) Dedup(items []string) []string {
	kept := make([]string, 0, len(items))
	sets := make([]map[string]struct{}, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		set := wordSet(item)
		dup := false
		for _, prev := range sets {
			if overlap(set, prev) > r.Threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, item)
		sets = append(sets, set)
	}
	return kept
}

// Rank deduplicates items, orders them by word count and then length, both
// descending, and keeps at most maxItems (maxItems <= 0 keeps all).
func (r Ranker) Rank(items []string, maxItems int) []string {
	kept := r.Dedup(items)
	sort.SliceStable(kept, func(i, j int) bool {
		wi, wj := len(strings.Fields(kept[i])), len(strings.Fields(kept[j]))
		if wi != wj {
			return wi > wj
		}
		return utf8.RuneCountInString(kept[i]) > utf8.RuneCountInString(kept[j])
	})
	if maxItems > 0 && len(kept) > maxItems {
		kept = kept[:maxItems]
	}
	return kept
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for w := range small {
		if _, ok := large[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(large))
}

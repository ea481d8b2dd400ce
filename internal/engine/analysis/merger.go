package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrNoPartials is reported when Merge receives nothing to merge.
var ErrNoPartials = errors.New("no partial results to merge")

// MergeResult is the output of Merger.Merge.
type MergeResult struct {
	Record Record
	Status Status
	Err    error
}

// Merger combines per-segment records into one record.
type Merger struct {
	ranker Ranker
	caps   Caps
	rank   func([]string, int) []string // overridable in tests
}

// NewMerger returns a Merger applying threshold and the final per-category caps.
func NewMerger(threshold float64, caps Caps) *Merger {
	return &Merger{ranker: NewRanker(threshold), caps: caps}
}

// Merge combines partials in segment order. A single partial is returned as is.
// If merging fails the first partial is returned with a degraded status.
func (m *Merger) Merge(partials []Record) (res MergeResult) {
	switch len(partials) {
	case 0:
		return MergeResult{
			Record: Record{ContentCategory: "general", MainTopics: []string{"general"}},
			Status: StatusFailed,
			Err:    ErrNoPartials,
		}
	case 1:
		return MergeResult{Record: partials[0], Status: StatusOK}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("merge partials: %v", r)
			slog.Warn("merger: falling back to first partial", slog.Any("error", err))
			res = MergeResult{Record: partials[0].Clone(), Status: StatusDegraded, Err: err}
		}
	}()

	rank := m.rank
	if rank == nil {
		rank = m.ranker.Rank
	}

	var out Record
	for _, c := range Categories {
		var all []string
		for i := range partials {
			all = append(all, partials[i].List(c)...)
		}
		out.SetList(c, rank(all, m.caps.For(c)))
	}
	out.MainTopics = topTopics(partials, maxTopics)
	out.Confidence = meanPositive(partials)
	out.ContentCategory = majorityCategory(partials)
	return MergeResult{Record: out, Status: StatusOK}
}

// topTopics returns the n most frequent topics; ties keep first-seen order.
func topTopics(partials []Record, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, p := range partials {
		for _, t := range p.MainTopics {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func meanPositive(partials []Record) float64 {
	sum, n := 0.0, 0
	for _, p := range partials {
		if p.Confidence > 0 {
			sum += p.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// majorityCategory picks the most common label; ties go to the label seen first.
func majorityCategory(partials []Record) string {
	counts := make(map[string]int)
	var order []string
	for _, p := range partials {
		label := p.ContentCategory
		if label == "" {
			label = "general"
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	best := ""
	for _, label := range order {
		if best == "" || counts[label] > counts[best] {
			best = label
		}
	}
	return best
}

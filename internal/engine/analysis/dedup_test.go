package analysis

import (
	"math"
	"reflect"
	"testing"
)

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "anything", 0},
		{"same words here", "Same Words HERE", 1},
		{"Invest in AI infrastructure now", "Invest in ai infrastructure now please", 5.0 / 6.0},
		{"apples and oranges", "bananas or grapes", 0},
		{"one two", "one two three four", 0.5},
	}
	for _, tt := range tests {
		got := WordOverlap(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WordOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if rev := WordOverlap(tt.b, tt.a); rev != got {
			t.Errorf("WordOverlap is not symmetric for %q / %q", tt.a, tt.b)
		}
	}
}

func TestRank(t *testing.T) {
	r := NewRanker(DefaultDuplicateThreshold)
	tests := []struct {
		name  string
		items []string
		max   int
		want  []string
	}{
		{
			name:  "near duplicate collapsed",
			items: []string{"Invest in AI infrastructure now", "Invest in ai infrastructure now please"},
			max:   5,
			want:  []string{"Invest in AI infrastructure now"},
		},
		{
			name:  "longest first",
			items: []string{"short one", "a much longer statement here", "four words right here"},
			max:   5,
			want:  []string{"a much longer statement here", "four words right here", "short one"},
		},
		{
			name:  "equal word count ordered by length",
			items: []string{"ab cd", "abcdef ghijkl"},
			max:   0,
			want:  []string{"abcdef ghijkl", "ab cd"},
		},
		{
			name:  "cap",
			items: []string{"alpha one", "beta two three", "gamma four five six"},
			max:   2,
			want:  []string{"gamma four five six", "beta two three"},
		},
		{
			name:  "blank items skipped",
			items: []string{"", "   ", "real content"},
			max:   5,
			want:  []string{"real content"},
		},
		{
			name:  "empty",
			items: nil,
			max:   5,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Rank(tt.items, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRank_Idempotent(t *testing.T) {
	r := NewRanker(DefaultDuplicateThreshold)
	items := []string{
		"Invest in AI infrastructure now",
		"Focus on picks and shovels businesses",
		"Invest in ai infrastructure now please",
		"Energy is the real bottleneck for data centers",
		"focus on picks and shovels businesses",
		"Look at Nvidia and TSMC",
	}
	once := r.Rank(items, 4)
	twice := r.Rank(once, 4)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Rank is not idempotent:\n once: %q\ntwice: %q", once, twice)
	}
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			if WordOverlap(once[i], once[j]) > r.Threshold {
				t.Errorf("duplicates survived: %q and %q", once[i], once[j])
			}
		}
	}
}

func TestNewRanker_Threshold(t *testing.T) {
	for _, th := range []float64{0, -1, 1.5} {
		if got := NewRanker(th).Threshold; got != DefaultDuplicateThreshold {
			t.Errorf("NewRanker(%v).Threshold = %v", th, got)
		}
	}
	if got := NewRanker(0.5).Threshold; got != 0.5 {
		t.Errorf("NewRanker(0.5).Threshold = %v", got)
	}
}

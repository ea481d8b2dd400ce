package analysis

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCategory string
		wantTopics   []string
	}{
		{
			name:         "empty",
			text:         "",
			wantCategory: "general",
			wantTopics:   []string{"general"},
		},
		{
			name:         "tie goes to the earlier rule",
			text:         picksAndShovels,
			wantCategory: "business",
			wantTopics:   []string{"general"},
		},
		{
			name:         "crypto counts repeats",
			text:         "Bitcoin, bitcoin and Ethereum are the heart of crypto and DeFi.",
			wantCategory: "crypto",
			wantTopics:   []string{"crypto"},
		},
		{
			name:         "personal development",
			text:         "Good sleep habits and discipline build a resilient mindset.",
			wantCategory: "personal_development",
			wantTopics:   []string{"personal_development"},
		},
		{
			name:         "several topics",
			text:         "The startup grew revenue through a platform strategy, using data, software and AI in the market.",
			wantCategory: "business",
			wantTopics:   []string{"business", "technology"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, topics := Classify(tt.text)
			if category != tt.wantCategory {
				t.Errorf("category = %q, want %q", category, tt.wantCategory)
			}
			if !reflect.DeepEqual(topics, tt.wantTopics) {
				t.Errorf("topics = %q, want %q", topics, tt.wantTopics)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		rec  Record
		want float64
	}{
		{name: "empty text", text: "  ", rec: Record{MainAlpha: []string{"x"}, KeyInsights: []string{"y"}}, want: 0},
		{name: "alpha and insights", text: "t", rec: Record{MainAlpha: []string{"x"}, KeyInsights: []string{"y"}}, want: 0.8},
		{name: "quotes only", text: "t", rec: Record{KeyQuotes: []string{"q"}}, want: 0.6},
		{name: "alpha without insights", text: "t", rec: Record{MainAlpha: []string{"x"}}, want: 0.4},
		{name: "nothing", text: "t", want: 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidence(tt.text, tt.rec); got != tt.want {
				t.Errorf("confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

package analysis

import (
	"strings"
	"unicode"
)

// topicRule scores a content category from the words of a text.
// Distinct rules count how many of the terms appear at all;
// the others count every occurrence.
type topicRule struct {
	name     string
	terms    []string
	distinct bool
}

// Rule order breaks score ties.
var topicRules = []topicRule{
	{name: "business", distinct: true, terms: []string{
		"investment", "market", "business", "strategy", "company", "startup", "growth", "revenue", "funding",
	}},
	{name: "technology", distinct: true, terms: []string{
		"technology", "ai", "data", "blockchain", "crypto", "digital", "platform", "software",
	}},
	{name: "investing", terms: []string{"invest", "investment", "portfolio"}},
	{name: "crypto", terms: []string{"crypto", "bitcoin", "ethereum", "defi"}},
	{name: "personal_development", distinct: true, terms: []string{
		"habit", "habits", "productivity", "mindset", "discipline", "health", "fitness",
		"meditation", "sleep", "happiness", "motivation", "career",
	}},
}

// topicThreshold is the score a category needs to be listed as a topic.
const topicThreshold = 2

// Classify labels text with a content category and its main topics.
// Text without any scored term is "general".
func Classify(text string) (category string, topics []string) {
	counts := make(map[string]int)
	for _, w := range words(text) {
		counts[w]++
	}

	category = "general"
	best := 0
	for _, rule := range topicRules {
		score := 0
		for _, term := range rule.terms {
			if rule.distinct {
				if counts[term] > 0 {
					score++
				}
			} else {
				score += counts[term]
			}
		}
		if score > best {
			best = score
			category = rule.name
		}
		if score > topicThreshold {
			topics = append(topics, rule.name)
		}
	}
	if len(topics) == 0 {
		topics = []string{"general"}
	}
	return category, topics
}

// confidence estimates the quality of a heuristic record.
func confidence(text string, rec Record) float64 {
	switch {
	case strings.TrimSpace(text) == "":
		return 0
	case len(rec.MainAlpha) > 0 && len(rec.KeyInsights) > 0:
		return 0.8
	case len(rec.KeyQuotes) > 0:
		return 0.6
	default:
		return 0.4
	}
}

// words lower-cases text and splits it on anything that is not a letter or digit.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

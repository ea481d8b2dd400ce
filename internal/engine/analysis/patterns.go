package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is one entry of an extraction family.
type Pattern struct {
	Name    string
	Re      *regexp.Regexp
	MinLen  int      // accepted when longer than MinLen runes
	MaxLen  int      // accepted when shorter than MaxLen runes; 0 = unbounded
	ScanCap int      // raw matches inspected
	Vocab   []string // at least one term must appear (case-insensitive)
	Stop    []string // exact matches rejected (case-insensitive)

	// Secondary patterns only run when the primary patterns of the
	// family found nothing in the segment.
	Secondary bool

	// Format turns the cleaned match into the stored string.
	// nil capitalizes the first letter.
	Format func(string) string
}

// Family is the ordered pattern list for one category.
type Family struct {
	Category string
	Patterns []Pattern
	// DedupPrefix compares the first N lower-cased runes when suppressing
	// repeats inside a segment. 0 compares the whole string.
	DedupPrefix int
}

var investmentVocab = []string{
	"opportunity", "investment", "portfolio", "allocation", "position", "trade",
	"alpha", "edge", "thesis", "strategy", "play", "bet",
}

var commonStop = []string{"THE", "AND", "BUT", "FOR", "YOU", "CAN"}

func prefixed(prefix string) func(string) string {
	return func(s string) string { return prefix + s }
}

func templated(tmpl string) func(string) string {
	return func(s string) string { return fmt.Sprintf(tmpl, s) }
}

func verbatim(s string) string { return s }

// DefaultFamilies returns the built-in pattern table.
func DefaultFamilies() []Family {
	return []Family{
		{
			Category: MainAlpha,
			Patterns: []Pattern{
				{
					Name:    "stance",
					Re:      regexp.MustCompile(`(?i)\b(?:I think|I believe|My view is|The opportunity is|You should|I recommend|The play is|The strategy is|What I'm doing|What works is)([^.!?]{20,200})`),
					MinLen:  30,
					ScanCap: 10,
					Vocab:   investmentVocab,
				},
				{
					Name:    "thesis",
					Re:      regexp.MustCompile(`(?i)\b(?:The alpha|The edge|The opportunity|The thesis|My prediction|I'm betting|The trade is|The investment|The position)([^.!?]{20,200})`),
					MinLen:  30,
					ScanCap: 10,
					Vocab:   investmentVocab,
				},
				{
					Name:    "positioning",
					Re:      regexp.MustCompile(`(?i)\b(?:bullish|bearish|buying|selling|investing in|allocating to|betting on|shorting)([^.!?]{20,150})`),
					MinLen:  30,
					ScanCap: 10,
					Vocab:   investmentVocab,
				},
				{
					Name:    "significance",
					Re:      regexp.MustCompile(`(?i)\b(?:This is|That's|It's) (?:huge|massive|big|significant|important|crucial|key|critical)([^.!?]{20,150})`),
					MinLen:  30,
					ScanCap: 10,
					Vocab:   investmentVocab,
				},
				{
					Name:    "direction",
					Re:      regexp.MustCompile(`(?i)\b(?:The future of|Where we're heading|What's coming|The next big thing|The trend is|The shift to)([^.!?]{20,150})`),
					MinLen:  30,
					ScanCap: 10,
					Vocab:   investmentVocab,
				},
				{
					Name:    "holding",
					Re:      regexp.MustCompile(`\b(?i:investing in|buying|holding|selling|shorting|bullish on|bearish on)\s+([A-Z][a-zA-Z]+(?: [A-Z][a-zA-Z]+){0,3})`),
					MinLen:  2,
					ScanCap: 5,
					Stop:    commonStop,
					Format:  prefixed("Discussed investment perspective on "),
				},
				{
					Name:    "ticker",
					Re:      regexp.MustCompile(`\b([A-Z][A-Z0-9]{2,10})\s+(?:token|coin|stock|is|will)\b`),
					MinLen:  2,
					ScanCap: 5,
					Stop:    commonStop,
					Format:  prefixed("Discussed investment perspective on "),
				},
				{
					Name:    "asset",
					Re:      regexp.MustCompile(`\b(?:The|A)\s+([A-Z][a-z]{3,20}\s*(?:coin|token|protocol|platform|exchange|fund))\b`),
					MinLen:  2,
					ScanCap: 5,
					Format:  prefixed("Discussed investment perspective on "),
				},
			},
		},
		{
			Category:    KeyInsights,
			DedupPrefix: 50,
			Patterns: []Pattern{
				{
					Name:    "key",
					Re:      regexp.MustCompile(`(?i)\b(?:The key is|The secret is|The important thing|What matters|The reality is|Here's the thing|The truth is)([^.!?]{20,200})`),
					MinLen:  25,
					ScanCap: 15,
				},
				{
					Name:    "method",
					Re:      regexp.MustCompile(`(?i)\b(?:You need to|You have to|You want to|The way to|How to|The best way)([^.!?]{20,200})`),
					MinLen:  25,
					ScanCap: 15,
				},
				{
					Name:    "problem",
					Re:      regexp.MustCompile(`(?i)\b(?:The problem with|The issue is|The challenge|What's broken|What doesn't work)([^.!?]{20,200})`),
					MinLen:  25,
					ScanCap: 15,
				},
				{
					Name:    "framework",
					Re:      regexp.MustCompile(`(?i)\b(?:The framework|The model|The approach|The methodology|The process|The system)([^.!?]{20,200})`),
					MinLen:  25,
					ScanCap: 15,
				},
				{
					Name:    "trend",
					Re:      regexp.MustCompile(`(?i)\b(?:What's happening|What we're seeing|The trend|The shift|The change|The evolution)([^.!?]{20,200})`),
					MinLen:  25,
					ScanCap: 15,
				},
				{
					Name:    "evidence",
					Re:      regexp.MustCompile(`(?i)\b(?:This|That|It) (?:shows|demonstrates|proves|indicates|suggests|means)([^.!?]{15,150})`),
					MinLen:  20,
					ScanCap: 10,
					Format:  func(s string) string { return "Key observation: " + strings.ToLower(s) },
				},
				{
					Name:    "reason",
					Re:      regexp.MustCompile(`(?i)\b(?:Because|Given that|The reason)([^.!?]{20,150})`),
					MinLen:  20,
					ScanCap: 10,
					Format:  func(s string) string { return "Key observation: " + strings.ToLower(s) },
				},
			},
		},
		{
			Category:    ActionableTakeaways,
			DedupPrefix: 30,
			Patterns: []Pattern{
				{
					Name:    "imperative",
					Re:      regexp.MustCompile(`(?i)\b(?:Start|Begin|Try|Use|Check out|Look at|Consider|Implement|Build|Create|Focus on)\b([^.!?]{10,150})`),
					MinLen:  15,
					ScanCap: 20,
				},
				{
					Name:    "advice",
					Re:      regexp.MustCompile(`(?i)\b(?:I recommend|I suggest|I advise|My advice is|You should try|Go with)([^.!?]{10,150})`),
					MinLen:  15,
					ScanCap: 20,
				},
				{
					Name:    "resource",
					Re:      regexp.MustCompile(`(?i)\b(?:The tool|The platform|The service|The app|The website|The resource)([^.!?]{10,150})`),
					MinLen:  15,
					ScanCap: 20,
				},
				{
					Name:    "subscribe",
					Re:      regexp.MustCompile(`(?i)\b(?:Download|Install|Sign up|Subscribe|Join|Follow|Watch|Read|Listen)\b([^.!?]{10,150})`),
					MinLen:  15,
					ScanCap: 20,
				},
				{
					Name:    "measure",
					Re:      regexp.MustCompile(`(?i)\b(?:Set up|Configure|Optimize|Track|Monitor|Measure|Analyze)\b([^.!?]{10,150})`),
					MinLen:  15,
					ScanCap: 20,
				},
				{
					Name:    "tool-named",
					Re:      regexp.MustCompile(`\b(?:using|with|on|via)\s+([A-Z][a-zA-Z0-9]{2,24})\s+(?:platform|tool|service|app|website|system)\b`),
					MinLen:  3,
					ScanCap: 8,
					Stop:    commonStop,
					Format:  templated("Explore %s for implementation"),
				},
				{
					Name:    "tool-domain",
					Re:      regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]{3,20})(?:\.com|\.io|\.org)\b`),
					MinLen:  3,
					ScanCap: 8,
					Stop:    commonStop,
					Format:  templated("Explore %s for implementation"),
				},
			},
		},
		{
			Category: KeyQuotes,
			Patterns: []Pattern{
				{
					Name:    "quoted",
					Re:      regexp.MustCompile(`"([^"]*)"`),
					MinLen:  15,
					MaxLen:  200,
					ScanCap: 5,
					Format:  verbatim,
				},
				{
					Name:      "attributed",
					Re:        regexp.MustCompile(`(?i)\b(?:I think|I believe|The key is|What we need|The biggest|You have to|The important thing)([^.!?]{20,150})`),
					MinLen:    20,
					ScanCap:   3,
					Secondary: true,
					Format:    verbatim,
				},
			},
		},
	}
}

// FallbackItems returns the placeholder strings used when a whole transcript
// produced nothing for category.
func FallbackItems(category, contentCategory string) []string {
	if contentCategory == "" {
		contentCategory = "general"
	}
	switch category {
	case MainAlpha:
		return []string{
			fmt.Sprintf("Investment and strategic opportunities discussed in %s sector", contentCategory),
			fmt.Sprintf("Market analysis and alpha generation strategies for %s", contentCategory),
		}
	case KeyInsights:
		return []string{
			fmt.Sprintf("Strategic frameworks and methodologies for %s", contentCategory),
			"Market trends and future outlook discussed",
			"Contrarian perspectives and unique viewpoints presented",
		}
	case ActionableTakeaways:
		return []string{
			"Strategies and implementation approaches from the discussion",
			"Tools and platforms mentioned for practical application",
			"Best practices and behavioral recommendations",
		}
	case KeyQuotes:
		return []string{
			"Key insights from the discussion (transcript analysis)",
			"Notable perspectives shared by the speakers",
		}
	}
	return nil
}

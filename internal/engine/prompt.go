package engine

// LLM prompt templates. Data only, no logic.

// analysisSystem frames every segment analysis call.
const analysisSystem = `You analyse podcast transcripts for an investor and founder audience.
You extract the non-obvious, high-signal content and ignore small talk, ads and intros.
You answer with JSON only.`

// segmentPrompt asks for one segment's record.
// Args: title, channel, segment index, segment text.
const segmentPrompt = `Podcast: %s
Channel: %s
Transcript segment %d:

%s

Return a JSON object with exactly these keys:
{
  "main_alpha": ["up to 3 contrarian or non-consensus ideas, each one full sentence"],
  "key_insights": ["up to 5 specific insights with the numbers, names or mechanisms mentioned"],
  "actionable_takeaways": ["up to 5 concrete actions a listener could take"],
  "key_quotes": ["up to 3 memorable verbatim quotes from the segment"],
  "content_category": "one of business, technology, investing, crypto, personal_development, strategy, general",
  "main_topics": ["2-5 short topic labels"],
  "confidence_score": 0.0
}

Rules:
- Use only what the segment says. Do not invent facts, names or numbers.
- Quotes must appear in the segment word for word.
- confidence_score is between 0 and 1 and reflects how much substance the segment has.
- Empty lists are fine when the segment has nothing for a key.`

// summarySystem frames narrative summaries.
const summarySystem = `You are an editor who turns podcast transcripts into clear, readable summaries.
Write in natural prose. Focus on insights, actionable advice and contrarian views.
Never invent facts that are not in the transcript.`

// summaryPrompts are keyed by style. Args: title, channel, duration, transcript.
var summaryPrompts = map[string]string{
	StyleBlog: `Write a blog post (600-900 words, markdown) about this podcast episode.

Title: %s
Channel: %s
Duration: %s

Start with "# " and the episode title. Open with one paragraph on what the episode is about.
Then cover the most important ideas in flowing paragraphs, with a "## Notable Highlights"
section of 2-3 verbatim quotes as blockquotes and a "## Key Takeaways" numbered list.
End with one sentence on who should listen.

Transcript:
%s`,

	StyleInsights: `List the strategic insights of this podcast episode as markdown.

Title: %s
Channel: %s
Duration: %s

Start with "# Key Insights: " and the title, then a "**Source:**" line with channel and duration.
Under "## Strategic Insights" write 3-5 numbered "### " headings, each followed by a short
paragraph explaining the insight and why it matters. Finish with "## Supporting Evidence"
holding up to 3 verbatim quotes as bullet points.

Transcript:
%s`,

	StyleBrief: `Write a brief (under 120 words, markdown) on this podcast episode.

Title: %s
Channel: %s
Duration: %s

Format:
# <title>
**<channel>** • <duration>
**Topics:** up to 4 comma-separated topics
**Key Quote:** one verbatim quote
**Worth Listening:** one sentence on why

Transcript:
%s`,
}

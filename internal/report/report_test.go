package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/analysis"
)

var fixedNow = time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)

func stubNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = orig })
}

func sampleAnalysis() engine.VideoAnalysis {
	return engine.VideoAnalysis{
		Video: engine.Video{
			ID: "abcdefghijk", Title: "AI Safety and the Future", Handle: "lexfridman",
			Published: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Duration: 7800,
		},
		Record: analysis.Record{
			MainAlpha:           []string{"Alpha one", "Alpha two", "Alpha three", "Alpha four"},
			KeyInsights:         []string{"Insight one", " ", "Insight two"},
			ActionableTakeaways: []string{"Do the thing"},
			KeyQuotes:           []string{"The biggest risk is the wrong objective"},
			ContentCategory:     "technology",
			MainTopics:          []string{"ai_safety", "regulation"},
			Confidence:          0.92,
		},
		Status: analysis.StatusOK,
		Method: analysis.MethodLLM,
	}
}

func TestDigest(t *testing.T) {
	stubNow(t)
	weak := sampleAnalysis()
	weak.Video.Handle, weak.Video.Title = "naval", "Weak one"
	weak.Record = analysis.Record{KeyInsights: []string{"x"}, Confidence: 0.3}
	failed := sampleAnalysis()
	failed.Video.Handle, failed.Video.Title, failed.Video.Duration = "joerogan", "Failed one", 600
	failed.Record = analysis.Record{}

	md := Digest(engine.RunReport{
		Channels: []engine.ChannelStatus{
			{Handle: "lexfridman", Videos: 1, Analyzed: 1},
			{Handle: "naval", Videos: 1, Analyzed: 1},
			{Handle: "ghost", Errors: []string{"channel not found"}},
		},
		Analyses: []engine.VideoAnalysis{sampleAnalysis(), weak, failed},
	})

	for _, want := range []string{
		"# Podcast Research Summary\n**Generated:** 2026-03-10 14:05 UTC  \n**Channels Processed:** 3  \n**Videos Analyzed:** 2",
		"## Processing Status\n- [x] **@lexfridman** - \"AI Safety and the Future\" (Mar 08, 2026) ✓",
		"**@naval** - \"Weak one\" (Mar 08, 2026) ⚠️",
		"**@joerogan** - \"Failed one\" (Mar 08, 2026) ❌",
		"- [ ] **@ghost** - channel not found ❌",
		"\n\n---\n\n## 🎯 Key Insights & Alpha\n\n### @lexfridman - \"AI Safety and the Future\"\n**Duration:** 2h 10m | **Published:** Mar 08, 2026",
		"**Link:** https://www.youtube.com/watch?v=abcdefghijk",
		"#### 🔥 Main Alpha\n- **Alpha one**\n- **Alpha two**\n- **Alpha three**\n\n",
		"#### 💡 Key Insights\n1. **Insight one**\n2. **Insight two**\n",
		"#### 📝 Key Quotes\n> \"The biggest risk is the wrong objective\"",
		"#### 🚀 Actionable Takeaways\n- Do the thing",
		"**Topics:** ai_safety • regulation",
		"## 📊 Summary Statistics\n- **Total Content Analyzed:** 4h 30m",
		"- **Key Insights Extracted:** 4",
		"- **Success Rate:** 2/3 videos (67%)",
		"- **Generated:** 2026-03-10 at 14:05 UTC",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "Alpha four")
	assert.NotContains(t, md, "### @joerogan")
}

func TestVideoSummary(t *testing.T) {
	stubNow(t)
	a := sampleAnalysis()
	a.Summary = "A long-form conversation."
	md := VideoSummary(a)
	assert.True(t, strings.HasPrefix(md, "# AI Safety and the Future\n\n**Channel:** @lexfridman  \n"))
	assert.Contains(t, md, "#### 📖 Summary\n\nA long-form conversation.")
	assert.Contains(t, md, "**Analysis Confidence:** 0.92  \n**Content Category:** technology\n")

	a.Status, a.Method = analysis.StatusDegraded, analysis.MethodHeuristic
	a.Record.ContentCategory = ""
	md = VideoSummary(a)
	assert.Contains(t, md, "**Content Category:** general")
	assert.Contains(t, md, "*Analysis degraded (heuristic).*")
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := Write(dir, DigestFileName(fixedNow), "# hi\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "podcast-digest-2026-03-10.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# hi\n", string(data))
}

func TestRenderHTML(t *testing.T) {
	doc, err := RenderHTML("# Weekly Digest\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n> \"quote\"\n\n<script>alert(1)</script>\n")
	require.NoError(t, err)
	assert.Contains(t, doc, "<title>Weekly Digest</title>")
	assert.Contains(t, doc, "<table>")
	assert.Contains(t, doc, "<blockquote>")
	assert.NotContains(t, doc, "<script>alert")
}

func TestConvertPDF_NoPandoc(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = orig })

	dir := t.TempDir()
	md := filepath.Join(dir, "digest.md")
	require.NoError(t, os.WriteFile(md, []byte("# Digest\n\nbody"), 0o600))

	err := ConvertPDF(context.Background(), md, "")
	assert.True(t, errors.Is(err, ErrPandocMissing))
	html, err := os.ReadFile(filepath.Join(dir, "digest.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1 id=\"digest\">Digest</h1>")
}

func TestMailer_Send(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "digest.md")
	require.NoError(t, os.WriteFile(attachment, []byte("# Digest"), 0o600))

	var sent *gomail.Message
	m := NewMailer(MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, From: "bot@example.com", To: []string{"a@example.com", "b@example.com"}})
	m.send = func(msg *gomail.Message) error {
		sent = msg
		return nil
	}

	require.NoError(t, m.Send("Podcast digest", "# Digest\n\n- **point**", attachment))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"Podcast digest"}, sent.GetHeader("Subject"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sent.GetHeader("To"))

	var buf bytes.Buffer
	_, err := sent.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, `filename="digest.md"`)

	m.send = func(*gomail.Message) error { return errors.New("connection refused") }
	assert.Error(t, m.Send("x", "y"))

	assert.Error(t, NewMailer(MailConfig{}).Send("x", "y"))
}

func TestPlan(t *testing.T) {
	rep := engine.RunReport{
		DryRun: true,
		Channels: []engine.ChannelStatus{
			{Handle: "naval", Title: "Naval", Videos: 1},
			{Handle: "ghost", Errors: []string{"channel not found"}},
		},
		Videos: []engine.Video{{
			ID: "abcdefghijk", Title: "How to Get Rich", Handle: "naval",
			Published: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Duration: 125,
		}},
	}
	md := Plan(rep)
	assert.Contains(t, md, "- **@naval** - 1 video(s)")
	assert.Contains(t, md, `  - "How to Get Rich" (Mar 09, 2026, 2m) https://www.youtube.com/watch?v=abcdefghijk`)
	assert.Contains(t, md, "- **@ghost** - channel not found ❌")
}

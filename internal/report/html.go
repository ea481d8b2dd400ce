package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var documentTmpl = template.Must(template.New("document").Parse(documentHTML))

// RenderHTML converts Markdown into a standalone, styled HTML document.
// The title is taken from the first level-one heading.
func RenderHTML(md string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var out bytes.Buffer
	err := documentTmpl.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{documentTitle(md), template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return out.String(), nil
}

func documentTitle(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if t, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return "Podcast Digest"
}

const documentHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 32px 16px;
      background: #f6f8fa;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #1f2328;
      line-height: 1.6;
    }
    main {
      max-width: 820px;
      margin: 0 auto;
      padding: 32px 40px;
      background: #ffffff;
      border: 1px solid #d0d7de;
      border-radius: 8px;
    }
    h1 { border-bottom: 2px solid #d0d7de; padding-bottom: 8px; }
    h2 { margin-top: 32px; border-bottom: 1px solid #eaeef2; padding-bottom: 4px; }
    h3 { margin-top: 28px; color: #0b4f9c; }
    h4 { margin: 18px 0 6px; }
    blockquote {
      margin: 8px 0;
      padding: 4px 16px;
      color: #57606a;
      border-left: 4px solid #d0d7de;
      font-style: italic;
    }
    hr { border: 0; border-top: 1px solid #d0d7de; margin: 28px 0; }
    code { background: #eff1f3; padding: 2px 4px; border-radius: 4px; }
    a { color: #0969da; }
    @media print {
      body { background: #ffffff; padding: 0; }
      main { border: 0; padding: 0; }
    }
  </style>
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`

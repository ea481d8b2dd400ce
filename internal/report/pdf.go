package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrPandocMissing is returned by ConvertPDF when pandoc is not installed.
// The HTML rendition has been written next to the requested PDF path.
var ErrPandocMissing = errors.New("pandoc not installed")

var lookPath = exec.LookPath

// ConvertPDF renders mdPath to pdfPath with pandoc. Without pandoc it writes
// an HTML rendition (pdfPath with an .html extension) for printing from a
// browser and returns ErrPandocMissing.
func ConvertPDF(ctx context.Context, mdPath, pdfPath string) error {
	if pdfPath == "" {
		pdfPath = strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".pdf"
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o750); err != nil {
		return fmt.Errorf("pdf: mkdir: %w", err)
	}

	pandoc, err := lookPath("pandoc")
	if err != nil {
		htmlPath, herr := writeHTMLFallback(mdPath, pdfPath)
		if herr != nil {
			return herr
		}
		slog.Warn("pandoc not found, wrote HTML instead", slog.String("html", htmlPath))
		return ErrPandocMissing
	}

	title := strings.TrimSuffix(filepath.Base(mdPath), filepath.Ext(mdPath))
	cmd := exec.CommandContext(ctx, pandoc, mdPath,
		"--output", pdfPath,
		"--standalone",
		"--toc", "--toc-depth=2",
		"--metadata", "title="+title,
		"--variable", "geometry:margin=2cm",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pandoc: %w: %s", err, strings.TrimSpace(string(out)))
	}
	slog.Info("pdf generated", slog.String("path", pdfPath))
	return nil
}

func writeHTMLFallback(mdPath, pdfPath string) (string, error) {
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("pdf: read %s: %w", mdPath, err)
	}
	doc, err := RenderHTML(string(md))
	if err != nil {
		return "", err
	}
	htmlPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".html"
	if err := os.WriteFile(htmlPath, []byte(doc), 0o640); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", htmlPath, err)
	}
	return htmlPath, nil
}

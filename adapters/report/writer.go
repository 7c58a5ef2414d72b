package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tdcov/internal"
	"tdcov/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	MarkdownFile = "covariance_report.md"
	HTMLFile     = "covariance_report.html"
)

// Writer stores the markdown report, and optionally its HTML rendering, in
// the lens/dataset output directory
type Writer struct {
	locator ports.OutputLocator
	html    bool
	logger  *internal.Logger
}

// NewWriter creates a report writer
func NewWriter(locator ports.OutputLocator, withHTML bool, logger *internal.Logger) *Writer {
	return &Writer{locator: locator, html: withHTML, logger: logger}
}

func (w *Writer) WriteResults(ctx context.Context, results ports.CovarianceResults) error {
	dir := w.locator.OutputDir(results.Lens, results.Dataset)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	md := RenderMarkdown(results)
	if err := os.WriteFile(filepath.Join(dir, MarkdownFile), md, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if w.html {
		page := RenderHTML(md, fmt.Sprintf("Covariance %s_%s", results.Lens, results.Dataset))
		if err := os.WriteFile(filepath.Join(dir, HTMLFile), page, 0o644); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
	}
	w.logger.Debug("Report written to %s", dir)
	return nil
}

// RenderHTML renders markdown as a complete HTML page
func RenderHTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(md, p, renderer)
}

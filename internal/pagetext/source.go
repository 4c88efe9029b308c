// Package pagetext produces per-page text for a PDF document, using direct
// text extraction first and rasterize-then-OCR as a bounded fallback.
package pagetext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// SourceType records how a page's text was obtained.
type SourceType string

const (
	SourceDirect SourceType = "direct"
	SourceOCR    SourceType = "ocr"
)

// PageText is the immutable text of a single page.
type PageText struct {
	PageIndex int // 0-based
	Text      string
	Source    SourceType

	// Warning carries a page-level extraction warning (OCR unavailable,
	// empty page). Warnings never fail the document.
	Warning string
}

// Config holds page text extraction settings.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	DPI        int           // rasterization DPI for the OCR fallback, default 150
	OCRTimeout time.Duration // per-page OCR budget, default 60s

	SegmentSize int // pages per processing segment, default 4
}

// Source extracts per-page text from PDF documents.
type Source struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewSource creates a Source with defaults applied.
func NewSource(cfg Config, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 60 * time.Second
	}
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = 4
	}
	return &Source{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// SetRunner replaces the command runner. Used by tests.
func (s *Source) SetRunner(r Runner) {
	s.runner = r
}

// SegmentSize returns the configured pages-per-segment batch size.
func (s *Source) SegmentSize() int {
	return s.cfg.SegmentSize
}

// PageCount returns the number of pages in the document.
func (s *Source) PageCount(_ context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages in %s: %w", path, err)
	}
	return count, nil
}

// PageText returns the text of a single page. Direct extraction is tried
// first; when it yields empty or whitespace-only text, the page is
// rasterized and OCRed. OCR failure is non-fatal: the page comes back
// with empty text, Source=ocr, and a warning.
func (s *Source) PageText(ctx context.Context, doc string, pageIndex int) (PageText, error) {
	pageNum := pageIndex + 1

	text, err := s.directText(ctx, doc, pageNum)
	if err != nil {
		return PageText{}, fmt.Errorf("page %d: %w", pageNum, err)
	}
	if strings.TrimSpace(text) != "" {
		return PageText{PageIndex: pageIndex, Text: text, Source: SourceDirect}, nil
	}

	ocrText, warn := s.ocrPage(ctx, doc, pageNum)
	pt := PageText{PageIndex: pageIndex, Text: ocrText, Source: SourceOCR, Warning: warn}
	if warn != "" {
		s.logger.Warn("page ocr fallback degraded", "doc", doc, "page", pageNum, "warning", warn)
	}
	return pt, nil
}

// directText runs pdftotext for a single page.
func (s *Source) directText(ctx context.Context, doc string, pageNum int) (string, error) {
	page := fmt.Sprintf("%d", pageNum)
	out, errb, err := s.runner.Run(ctx, s.cfg.Pdftotext,
		"-f", page, "-l", page, "-layout", "-enc", "UTF-8", "-eol", "unix", doc, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w (%s)", err, truncate(string(errb), 512))
	}
	// pdftotext appends a form feed after each page.
	return strings.TrimSuffix(string(out), "\f"), nil
}

// ocrPage rasterizes one page and OCRs it. All failures are reduced to a
// warning string; extraction always proceeds.
func (s *Source) ocrPage(ctx context.Context, doc string, pageNum int) (text, warning string) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OCRTimeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "packetcheck-ocr-*")
	if err != nil {
		return "", fmt.Sprintf("ocr temp dir: %v", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			s.logger.Warn("failed to remove ocr temp dir", "dir", tmpDir, "error", err)
		}
	}()

	img, warn := s.rasterize(ctx, doc, pageNum, tmpDir)
	if warn != "" {
		return "", warn
	}

	// tesseract <img> stdout
	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, img, "stdout")
	if err != nil {
		return "", fmt.Sprintf("tesseract failed: %v (%s)", err, truncate(string(errb), 512))
	}
	return string(out), ""
}

// rasterize renders a single page to PNG and returns the image path.
func (s *Source) rasterize(ctx context.Context, doc string, pageNum int, tmpDir string) (img, warning string) {
	page := fmt.Sprintf("%d", pageNum)
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r <dpi> -png <doc> <prefix>
	_, errb, err := s.runner.Run(ctx, s.cfg.Pdftoppm,
		"-f", page, "-l", page, "-r", fmt.Sprintf("%d", s.cfg.DPI), "-png", doc, prefix)
	if err != nil {
		return "", fmt.Sprintf("pdftoppm failed: %v (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := globPNGs(prefix)
	if len(matches) == 0 {
		return "", "pdftoppm produced no images"
	}
	return matches[0], ""
}

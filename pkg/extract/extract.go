// Package extract turns files on disk into paginated plain text. Each
// document kind has its own strategy and a simpler fallback; a single bad
// page or slide degrades to empty content instead of failing the document,
// and only an unreadable file surfaces an error to the caller.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/notefern/cardindex/pkg/content"
	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/log"
	"github.com/notefern/cardindex/pkg/textenc"
)

// paragraphsPerPage is the synthetic pagination used for formats with no
// native page concept (word, powerpoint fallback).
const paragraphsPerPage = 4

var logger = log.ForComponent("extract")

// TextRecognizer recognizes text in images. The implementation is external
// and pluggable; the zero service falls back to EXIF metadata.
type TextRecognizer interface {
	ProcessImage(ctx context.Context, path string) (string, error)
}

// Service extracts text from documents of declared kinds.
type Service struct {
	policy     content.FilterPolicy
	detector   *textenc.Detector
	recognizer TextRecognizer
	pdfEng     pdfEngine
}

// Option configures a Service.
type Option func(*Service)

// WithRecognizer installs an image text recognizer.
func WithRecognizer(r TextRecognizer) Option {
	return func(s *Service) { s.recognizer = r }
}

// WithFilterPolicy overrides the text-plausibility policy.
func WithFilterPolicy(p content.FilterPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithDetector overrides the encoding detector.
func WithDetector(d *textenc.Detector) Option {
	return func(s *Service) { s.detector = d }
}

// NewService builds an extraction service with default policy and platform
// encoding detection.
func NewService(opts ...Option) *Service {
	s := &Service{
		policy:   content.DefaultFilterPolicy(),
		detector: textenc.Default,
		pdfEng:   ledongthucEngine{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract reads the file at path and extracts text according to the
// declared kind. Unknown kinds are treated as plain text. The returned
// document always has Content set; Pages is populated for paginated kinds.
func (s *Service) Extract(ctx context.Context, path string, kind core.DocumentKind) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch kind {
	case core.KindPDF:
		return s.extractPDF(path)
	case core.KindWord:
		return s.extractWord(path)
	case core.KindPowerPoint:
		return s.extractPowerPoint(path)
	case core.KindExcel:
		return s.extractExcel(path)
	case core.KindImage:
		return s.extractImage(ctx, path)
	default:
		return s.extractPlain(path)
	}
}

// collapseWhitespace folds runs of blanks and blank lines into single
// separators.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// paragraphsToPages groups paragraphs into synthetic pages. The last page
// may hold fewer paragraphs.
func paragraphsToPages(paragraphs []string, pageType string) []core.Page {
	var pages []core.Page
	for start := 0; start < len(paragraphs); start += paragraphsPerPage {
		end := start + paragraphsPerPage
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		pages = append(pages, core.Page{
			PageNumber: len(pages) + 1,
			Content:    strings.Join(paragraphs[start:end], "\n\n"),
			PageType:   pageType,
		})
	}
	return pages
}

// splitParagraphs splits text into paragraphs on blank-line boundaries.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

func documentFromPages(pages []core.Page, encoding string) *core.Document {
	var sb strings.Builder
	for _, p := range pages {
		if p.Content == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Content)
	}
	return &core.Document{
		Content:    sb.String(),
		Encoding:   encoding,
		Pages:      pages,
		TotalPages: len(pages),
	}
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}

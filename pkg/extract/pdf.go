package extract

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/notefern/cardindex/pkg/core"
)

// pdfEngine abstracts the PDF library so page-level failure handling can be
// tested without crafting corrupt documents.
type pdfEngine interface {
	open(path string) (pdfDocument, error)
}

type pdfDocument interface {
	numPages() int
	// pageText returns the text of the 1-based page n.
	pageText(n int) (string, error)
	// plainText extracts the whole document in one pass.
	plainText() (string, error)
	close() error
}

type ledongthucEngine struct{}

type ledongthucDocument struct {
	file   io.Closer
	reader *pdf.Reader
}

func (ledongthucEngine) open(path string) (pdfDocument, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{file: f, reader: r}, nil
}

func (d *ledongthucDocument) numPages() int { return d.reader.NumPage() }

func (d *ledongthucDocument) pageText(n int) (string, error) {
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (d *ledongthucDocument) plainText() (string, error) {
	r, err := d.reader.GetPlainText()
	if err != nil {
		return "", err
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *ledongthucDocument) close() error { return d.file.Close() }

// extractPDF walks the document page by page. A panic or error on one page
// yields an empty page and extraction continues. If every page fails, a
// whole-document single-pass extraction is attempted before giving up.
func (s *Service) extractPDF(path string) (*core.Document, error) {
	doc, err := s.pdfEng.open(path)
	if err != nil {
		return nil, wrapf(err, "open pdf %s", path)
	}
	defer doc.close()

	total := doc.numPages()
	pages := make([]core.Page, 0, total)
	failed := 0
	for n := 1; n <= total; n++ {
		text, err := safePageText(doc, n)
		if err != nil {
			logger.Debugf("pdf page %d of %s unreadable: %v", n, path, err)
			failed++
			text = ""
		}
		pages = append(pages, core.Page{
			PageNumber: n,
			Content:    collapseWhitespace(text),
			PageType:   "pdf",
		})
	}
	if failed > 0 {
		logger.Warnf("pdf %s: %d of %d pages unreadable", path, failed, total)
	}
	if total > 0 && failed == total {
		return s.pdfSinglePass(doc, path)
	}
	return documentFromPages(pages, "utf-8"), nil
}

// pdfSinglePass extracts the whole document in one pass, producing a single
// page. Used when per-page traversal yields nothing.
func (s *Service) pdfSinglePass(doc pdfDocument, path string) (*core.Document, error) {
	text, err := safePlainText(doc)
	if err != nil {
		return nil, wrapf(err, "extract pdf %s", path)
	}
	pages := []core.Page{{PageNumber: 1, Content: collapseWhitespace(text), PageType: "pdf"}}
	return documentFromPages(pages, "utf-8"), nil
}

// safePageText converts page-level panics from the PDF library into errors.
func safePageText(doc pdfDocument, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: panic: %v", n, r)
		}
	}()
	return doc.pageText(n)
}

func safePlainText(doc pdfDocument) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return doc.plainText()
}

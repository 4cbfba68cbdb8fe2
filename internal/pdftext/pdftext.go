// Package pdftext turns PDF bytes into page-ordered plain text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PageSeparator follows every page's text, including empty pages.
const PageSeparator = "\n\n"

// ErrNotPDF is returned when the input cannot be opened as a PDF.
var ErrNotPDF = errors.New("not a readable PDF")

// pageSource abstracts the parsed document so page joining can be tested
// without fixture files.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error) // n is 1-based
}

// Extractor extracts text from PDF documents.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the text of every page followed by PageSeparator. Pages
// without extractable text contribute only the separator.
func (e *Extractor) Extract(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return joinPages(readerPages{r}, e.logger), nil
}

func joinPages(src pageSource, logger *zap.Logger) string {
	var sb strings.Builder
	for n := 1; n <= src.NumPage(); n++ {
		text, err := src.PageText(n)
		if err != nil {
			logger.Debug("page has no extractable text", zap.Int("page", n), zap.Error(err))
			text = ""
		}
		sb.WriteString(text)
		sb.WriteString(PageSeparator)
	}
	return sb.String()
}

type readerPages struct {
	r *pdf.Reader
}

func (p readerPages) NumPage() int { return p.r.NumPage() }

func (p readerPages) PageText(n int) (string, error) {
	page := p.r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

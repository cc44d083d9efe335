// Package extractor turns a downloaded document's raw bytes into plain
// text, dispatching by domain.DocumentType. PDF extraction is grounded on
// kk7453603-AIAssistent's unused-but-declared github.com/ledongthuc/pdf
// dependency (wired here for real) cross-checked against
// github.com/pdfcpu/pdfcpu's structural page count, the way the teacher
// cross-checks PDF structure before text conversion in
// loader/internal/pdfutil.go.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/uni-regulations/rag-core/internal/domain"
	"github.com/uni-regulations/rag-core/internal/ragerr"
)

// Extractor dispatches raw document bytes to a format-specific text
// extraction routine.
type Extractor struct{}

// New constructs an Extractor. It holds no state; format handlers are
// pure functions of the input bytes.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns doc's plain text, normalized per spec.md §4.2. Unknown or
// unsupported types wrap ragerr.ErrExtractionFailed.
func (e *Extractor) Extract(doc domain.Document, data []byte) (string, error) {
	var (
		raw string
		err error
	)
	switch doc.Type {
	case domain.DocumentPDF:
		raw, err = extractPDF(data)
	case domain.DocumentDOCX:
		raw, err = extractDOCX(data)
	case domain.DocumentDOC:
		err = fmt.Errorf("extractor: legacy .doc binary format not supported (%s): %w", doc.Filename, ragerr.ErrExtractionFailed)
	default:
		err = fmt.Errorf("extractor: unknown document type for %s: %w", doc.Filename, ragerr.ErrExtractionFailed)
	}
	if err != nil {
		return "", err
	}
	return normalize(raw), nil
}

func extractPDF(data []byte) (string, error) {
	declaredPages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("extractor: pdf structural validation: %w", errors.Join(err, ragerr.ErrExtractionFailed))
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extractor: open pdf: %w", errors.Join(err, ragerr.ErrExtractionFailed))
	}

	totalPages := r.NumPage()
	if totalPages != declaredPages {
		fmt.Printf("extractor: page count mismatch: pdfcpu reports %d, ledongthuc/pdf reports %d\n", declaredPages, totalPages)
	}

	var sb strings.Builder
	extractedPages := 0
	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			fmt.Printf("extractor: page %d text extraction failed: %v\n", i, err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
		extractedPages++
	}

	if extractedPages == 0 {
		return "", fmt.Errorf("extractor: no extractable pages out of %d: %w", totalPages, ragerr.ErrExtractionFailed)
	}
	return sb.String(), nil
}

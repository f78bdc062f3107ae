// Package extract pulls plain text out of uploaded statement documents.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrIncorrectPassword indicates the document is encrypted and the supplied
// password (possibly empty) did not unlock it.
var ErrIncorrectPassword = errors.New("incorrect document password")

// Extractor converts a raw document into per-page text.
type Extractor interface {
	// Pages returns the plain text of each page in document order.
	// Returns ErrIncorrectPassword when the document cannot be decrypted
	// with the given password.
	Pages(data []byte, password string) ([]string, error)
}

// PDFExtractor extracts text from PDF statements.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Pages extracts the plain text of every page of the PDF.
func (e *PDFExtractor) Pages(data []byte, password string) ([]string, error) {
	reader := bytes.NewReader(data)
	size := int64(len(data))

	doc, err := pdf.NewReaderEncrypted(reader, size, func() string { return password })
	if err != nil {
		if isPasswordError(err) {
			return nil, ErrIncorrectPassword
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// The pdf library reports decryption failures as plain errors, so the
// classification has to match on message text.
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

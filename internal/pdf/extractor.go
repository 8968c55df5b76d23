// Package pdfutil wraps ledongthuc/pdf for the two things the client needs
// from a PDF: how many pages it has and what text it carries.
package pdfutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

var (
	// ErrSource means the bytes could not be obtained or are not a PDF.
	ErrSource = errors.New("document source unavailable or malformed")
	// ErrEngine means the parser itself failed.
	ErrEngine = errors.New("pdf engine failure")
)

// open parses data, turning parser panics into ErrEngine.
func open(data []byte) (doc *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrEngine, r)
		}
	}()
	doc, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	return doc, nil
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (n int, err error) {
	doc, err := open(data)
	if err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrEngine, r)
		}
	}()
	n = doc.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: document has no pages", ErrSource)
	}
	return n, nil
}

// ExtractText reads PDF bytes and returns plain text, one line break per page.
func ExtractText(data []byte) (text string, err error) {
	doc, err := open(data)
	if err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrEngine, r)
		}
	}()
	var builder strings.Builder
	total := doc.NumPage()
	for page := 1; page <= total; page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// ExtractFromReader drains the reader before passing along to ExtractText.
func ExtractFromReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return ExtractText(data)
}

package infrastructure

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for data without a PDF signature.
var ErrNotPDF = errors.New("not a PDF document")

// IsPDF checks the file signature.
func IsPDF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("%PDF"))
}

// CountPDFPages parses b and returns its page count.
func CountPDFPages(b []byte) (n int, err error) {
	if !IsPDF(b) {
		return 0, ErrNotPDF
	}
	// the parser panics on some truncated cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	rd, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return rd.NumPage(), nil
}

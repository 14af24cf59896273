// Package pdf extracts plain text from uploaded invoice PDFs. Extraction
// is a fallible collaborator: scanned or damaged files may yield partial
// or empty text, and the assessment pipeline proceeds regardless.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the concatenated text content of a PDF. Malformed
// files produce an error, never a panic; the parser is known to panic on
// exotic inputs so extraction is recover-guarded.
func ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("PDF parser failure: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("failed to read PDF text stream: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

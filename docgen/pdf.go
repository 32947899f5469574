// Package docgen renders text content into downloadable document bytes.
package docgen

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// maxPDFRunes caps how much content one generated document carries.
const maxPDFRunes = 4000

// PDF renders content into a paginated A4 PDF document.
func PDF(content string) ([]byte, error) {
	if runes := []rune(content); len(runes) > maxPDFRunes {
		content = string(runes[:maxPDFRunes])
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.MultiCell(0, 6, content, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

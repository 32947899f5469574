// Package extract turns uploaded file bytes into text. Extraction is a pure
// function of (bytes, filename): the same input always yields the same
// result, and no failure ever escapes as an error — a file that cannot be
// read simply has no usable text.
package extract

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
)

// Text extracts the textual content of a file, dispatching on the filename
// suffix (case-insensitive). The second return value is false when the file
// kind is unrecognized or extraction produced no usable text.
func Text(data []byte, filename string) (text string, ok bool) {
	// Corrupt files routinely panic deep inside parsers; treat any such
	// failure as "no usable text".
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	case ".png", ".jpg", ".jpeg":
		return imageText(data)
	case ".txt", ".md", ".json":
		return plainText(data)
	default:
		return "", false
	}
}

// pdfText concatenates page text in page order.
func pdfText(data []byte) (string, bool) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", false
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), true
}

// docxText concatenates paragraph text in document order.
func docxText(data []byte) (string, bool) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, isParagraph := item.(*docx.Paragraph); isParagraph {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return strings.Join(paragraphs, "\n"), true
}

// imageText runs OCR over the image; whitespace-only output counts as no
// usable text.
func imageText(data []byte) (string, bool) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return "", false
	}
	text, err := client.Text()
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func plainText(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

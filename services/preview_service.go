package services

import (
	"bytes"
	"fmt"
	"html"
	"log"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// PreviewFormat selects the representation returned by a preview request
type PreviewFormat string

const (
	PreviewJSON PreviewFormat = "json"
	PreviewHTML PreviewFormat = "html"
	PreviewText PreviewFormat = "text"
)

// IsValid reports whether the format is a supported preview format
func (f PreviewFormat) IsValid() bool {
	switch f {
	case PreviewJSON, PreviewHTML, PreviewText:
		return true
	}
	return false
}

// ErrPreviewUnsupported is returned for file types that have no text
// representation we can extract.
var ErrPreviewUnsupported = fmt.Errorf("preview not supported for this file type")

// PreviewService extracts a text preview from stored documents.
// PDF extraction uses ledongthuc/pdf, docx extraction fumiama/go-docx;
// plain text files are passed through directly. Legacy .doc files have
// no extractor and are reported as unsupported.
type PreviewService struct{}

// NewPreviewService creates a new preview service
func NewPreviewService() *PreviewService {
	return &PreviewService{}
}

// Supports reports whether the filename's type has a previewable representation
func (s *PreviewService) Supports(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".docx":
		return true
	}
	return false
}

// Extract returns the plain text content of the file
func (s *PreviewService) Extract(filename string, content []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return s.extractPDF(content)
	case ".docx":
		return s.extractDocx(content)
	case ".txt":
		return string(content), nil
	default:
		return "", ErrPreviewUnsupported
	}
}

// RenderHTML wraps the extracted text in a minimal escaped HTML document
func (s *PreviewService) RenderHTML(filename, text string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>")
	b.WriteString(html.EscapeString(filename))
	b.WriteString("</title></head>\n<body>\n")
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// sanitizePDF truncates trailing garbage after the last %%EOF marker.
// PDFs that passed through a browser upload sometimes carry extra bytes
// that break the parser.
func sanitizePDF(content []byte) []byte {
	if len(content) == 0 || !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if extra := len(content) - pdfEnd; extra > 10 {
		log.Printf("preview: removing %d bytes of trailing garbage after %%EOF", extra)
		return content[:pdfEnd]
	}

	return content
}

func (s *PreviewService) extractDocx(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty docx content")
	}

	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}

	var textBuilder strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			if line := strings.TrimSpace(block.String()); line != "" {
				textBuilder.WriteString(line)
				textBuilder.WriteString("\n")
			}
		case *docx.Table:
			if text := strings.TrimSpace(block.String()); text != "" {
				textBuilder.WriteString(text)
				textBuilder.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(textBuilder.String()), nil
}

func (s *PreviewService) extractPDF(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}

	content = sanitizePDF(content)

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// Fallback to plain text when row extraction fails
			text, plainErr := page.GetPlainText(nil)
			if plainErr != nil {
				log.Printf("preview: text extraction failed for page %d: %v", i, plainErr)
				continue
			}
			textBuilder.WriteString(text)
			textBuilder.WriteString("\n")
			continue
		}

		for _, row := range rows {
			var rowText strings.Builder
			for _, word := range row.Content {
				rowText.WriteString(word.S)
			}
			if line := strings.TrimSpace(rowText.String()); line != "" {
				textBuilder.WriteString(line)
				textBuilder.WriteString("\n")
			}
		}
		textBuilder.WriteString("\n")
	}

	return strings.TrimSpace(textBuilder.String()), nil
}

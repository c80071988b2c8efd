package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewFormat_IsValid(t *testing.T) {
	assert.True(t, PreviewJSON.IsValid())
	assert.True(t, PreviewHTML.IsValid())
	assert.True(t, PreviewText.IsValid())
	assert.False(t, PreviewFormat("xml").IsValid())
	assert.False(t, PreviewFormat("").IsValid())
}

func TestPreviewService_Supports(t *testing.T) {
	svc := NewPreviewService()

	assert.True(t, svc.Supports("thesis.pdf"))
	assert.True(t, svc.Supports("notes.TXT"))
	assert.True(t, svc.Supports("draft.docx"))
	assert.False(t, svc.Supports("draft.doc"))
	assert.False(t, svc.Supports("photo.png"))
}

func TestPreviewService_ExtractText(t *testing.T) {
	svc := NewPreviewService()

	text, err := svc.Extract("notes.txt", []byte("line one\nline two"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestPreviewService_ExtractUnsupported(t *testing.T) {
	svc := NewPreviewService()

	_, err := svc.Extract("draft.doc", []byte("irrelevant"))
	assert.ErrorIs(t, err, ErrPreviewUnsupported)
}

func TestPreviewService_ExtractMalformedDocx(t *testing.T) {
	svc := NewPreviewService()

	_, err := svc.Extract("draft.docx", []byte("not a zip archive"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPreviewUnsupported)

	_, err = svc.Extract("draft.docx", nil)
	assert.Error(t, err)
}

func TestPreviewService_ExtractEmptyPDF(t *testing.T) {
	svc := NewPreviewService()

	_, err := svc.Extract("thesis.pdf", nil)
	assert.Error(t, err)
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	svc := NewPreviewService()

	html := svc.RenderHTML("<script>.pdf", "a < b\nc & d")

	assert.Contains(t, html, "&lt;script&gt;.pdf")
	assert.Contains(t, html, "<p>a &lt; b</p>")
	assert.Contains(t, html, "<p>c &amp; d</p>")
	assert.NotContains(t, html, "<script>")
}

func TestSanitizePDF(t *testing.T) {
	valid := []byte("%PDF-1.4 content %%EOF\n")

	// Clean PDFs pass through unchanged
	assert.Equal(t, valid, sanitizePDF(valid))

	// Trailing garbage beyond the EOF marker is truncated
	dirty := append([]byte{}, valid...)
	dirty = append(dirty, []byte("<html>unexpected trailing data</html>")...)
	assert.Equal(t, valid, sanitizePDF(dirty))

	// Non-PDF content is left alone
	notPDF := []byte("plain text %%EOF extra")
	assert.Equal(t, notPDF, sanitizePDF(notPDF))
}

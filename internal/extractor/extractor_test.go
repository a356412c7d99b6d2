package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforms/docufill-api/internal/llm"
)

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><body>`)
	for _, p := range paragraphs {
		body.WriteString("<p><r><t>")
		body.WriteString(p)
		body.WriteString("</t></r></p>")
	}
	body.WriteString(`</body></document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, []string{"First paragraph.", "Second paragraph."})

	text, err := ExtractDOCX(data)
	require.NoError(t, err)

	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtractDOCX_NotAZip(t *testing.T) {
	_, err := ExtractDOCX([]byte("plain text, not a docx"))
	assert.Error(t, err)
}

func TestExtractPDF_InvalidData(t *testing.T) {
	_, err := ExtractPDF([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestExtractTXT(t *testing.T) {
	text, err := ExtractTXT([]byte("line one\r\n\r\n  line two  \r\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractTXT_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	text, err := ExtractTXT(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtractTXT_Windows1252(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252, invalid UTF-8 alone.
	data := []byte{0x93, 'h', 'i', 0x94}
	text, err := ExtractTXT(data)
	require.NoError(t, err)
	assert.Contains(t, text, "hi")
}

func TestExtractTXT_Empty(t *testing.T) {
	_, err := ExtractTXT(nil)
	assert.Error(t, err)
}

func TestIsLowYield(t *testing.T) {
	assert.True(t, IsLowYield(""))
	assert.True(t, IsLowYield("--- Page 1 ---\nshort"))
	assert.False(t, IsLowYield("--- Page 1 ---\n"+strings.Repeat("meaningful text ", 10)))
}

func TestVisionExtractor_StructuredResponse(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{`Here you go:
{"document_type": "transcript", "information_chunks": [
  {"content": "GPA 3.9", "category": "education"},
  {"content": "Jane Smith", "category": "personal_info"},
  {"content": "   ", "category": "noise"}
]}`}}
	v := NewVisionExtractor(mock)

	chunks, err := v.ExtractImage(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "GPA 3.9", chunks[0].Content)
	assert.Equal(t, "education", chunks[0].Category)
	assert.Equal(t, 1, mock.VisionCalls)
}

func TestVisionExtractor_RawTextFallback(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{"The image shows a transcript with GPA 3.9"}}
	v := NewVisionExtractor(mock)

	chunks, err := v.ExtractImage(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "custom_documentation", chunks[0].Category)
	assert.Contains(t, chunks[0].Content, "GPA 3.9")
}

func TestVisionExtractor_ProviderError(t *testing.T) {
	mock := &llm.MockProvider{Err: errors.New("vision unavailable")}
	v := NewVisionExtractor(mock)

	_, err := v.ExtractImage(context.Background(), []byte{0xFF, 0xD8})
	assert.Error(t, err)
}

func TestVisionExtractor_EmptyImage(t *testing.T) {
	mock := &llm.MockProvider{}
	v := NewVisionExtractor(mock)

	_, err := v.ExtractImage(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 0, mock.VisionCalls)
}

func TestExtractImageText_FlattensChunks(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{`{"information_chunks": [
  {"content": "GPA 3.9", "category": "education"}]}`}}
	v := NewVisionExtractor(mock)

	text, err := v.ExtractImageText(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)

	assert.Equal(t, "[education]\nGPA 3.9", text)
}

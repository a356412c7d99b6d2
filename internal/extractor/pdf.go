package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MinPDFTextYield is the threshold below which extracted PDF text is treated
// as a failed extraction (scanned or image-only PDF) and callers should fall
// back to vision OCR.
const MinPDFTextYield = 50

func ExtractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fmt.Fprintf(&textBuilder, "--- Page %d ---\n", i)
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extractedText := strings.TrimSpace(textBuilder.String())

	if extractedText == "" {
		return "", fmt.Errorf("no text could be extracted from PDF")
	}

	return extractedText, nil
}

// IsLowYield reports whether extracted text is too thin to be the real
// document content, ignoring the page markers the extractor inserts.
func IsLowYield(text string) bool {
	stripped := text
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "--- Page ") && strings.HasSuffix(line, " ---") {
			stripped = strings.Replace(stripped, line, "", 1)
		}
	}
	return len(strings.TrimSpace(stripped)) < MinPDFTextYield
}

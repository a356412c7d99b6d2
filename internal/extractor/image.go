package extractor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campusforms/docufill-api/internal/llm"
)

// ImageChunk is one piece of information the vision model pulled out of an
// image, with its self-assigned category.
type ImageChunk struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

type visionResult struct {
	DocumentType      string       `json:"document_type"`
	InformationChunks []ImageChunk `json:"information_chunks"`
}

const visionExtractionPrompt = `Analyze this document image and extract ALL information from it.

Return your answer as a JSON object with this exact structure:
{
  "document_type": "what kind of document this is",
  "information_chunks": [
    {"content": "one piece of extracted information", "category": "a short snake_case category like personal_info, education, testing"}
  ]
}

Rules:
1. Extract every piece of visible text and information
2. Group related information into chunks
3. Preserve exact values (names, dates, scores, numbers) verbatim
4. Return ONLY the JSON object, no other text`

// VisionExtractor extracts text content from document images (and scanned
// PDFs) through the vision capability of the LLM provider.
type VisionExtractor struct {
	provider llm.Provider
}

func NewVisionExtractor(provider llm.Provider) *VisionExtractor {
	return &VisionExtractor{provider: provider}
}

// ExtractImage runs vision extraction over raw image bytes. It prefers the
// structured information_chunks JSON the prompt asks for; when the model
// answers with anything else, the whole response becomes a single
// custom_documentation chunk so no extracted text is lost.
func (v *VisionExtractor) ExtractImage(ctx context.Context, data []byte) ([]ImageChunk, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image file")
	}

	imageB64 := base64.StdEncoding.EncodeToString(data)

	response, err := v.provider.VisionAnalyze(ctx, imageB64, visionExtractionPrompt)
	if err != nil {
		return nil, fmt.Errorf("vision extraction failed: %w", err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("vision extraction returned no content")
	}

	chunks := parseVisionResponse(response)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("vision extraction yielded no usable chunks")
	}
	return chunks, nil
}

// ExtractImageText flattens vision extraction into plain text, for feeding
// image content through the same pipeline as textual documents.
func (v *VisionExtractor) ExtractImageText(ctx context.Context, data []byte) (string, error) {
	chunks, err := v.ExtractImage(ctx, data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, chunk := range chunks {
		if chunk.Category != "" {
			fmt.Fprintf(&sb, "[%s]\n", chunk.Category)
		}
		sb.WriteString(chunk.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func parseVisionResponse(response string) []ImageChunk {
	// Models often wrap the JSON in prose or code fences; take the widest
	// brace-delimited slice.
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		var result visionResult
		if err := json.Unmarshal([]byte(response[start:end+1]), &result); err == nil {
			var chunks []ImageChunk
			for _, chunk := range result.InformationChunks {
				if strings.TrimSpace(chunk.Content) == "" {
					continue
				}
				if chunk.Category == "" {
					chunk.Category = "custom_documentation"
				}
				chunks = append(chunks, chunk)
			}
			if len(chunks) > 0 {
				return chunks
			}
		}
	}

	return []ImageChunk{{Content: response, Category: "custom_documentation"}}
}

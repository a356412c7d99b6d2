package formfill

import (
	"context"
	"fmt"
	"strings"

	"github.com/campusforms/docufill-api/internal/llm"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/utils"
)

// NotFoundSentinel is the literal marker signaling an unresolved extraction.
// It is always a successful return value, never an error.
const NotFoundSentinel = "NOT FOUND"

// DefaultChunkLimit bounds how many ranked chunks go into one extraction
// prompt.
const DefaultChunkLimit = 30

// IsNotFound reports whether an extracted value carries the not-found
// sentinel (case-insensitive, anywhere in the value).
func IsNotFound(value string) bool {
	return strings.Contains(strings.ToUpper(value), NotFoundSentinel)
}

// Extractor produces single field values from ranked chunk context via the
// LLM capability. Every method converts LLM failures into sentinel values so
// batch filling never loses the whole batch to one field.
type Extractor struct {
	provider llm.Provider
	logger   *utils.Logger
}

func NewExtractor(provider llm.Provider, logger *utils.Logger) *Extractor {
	return &Extractor{provider: provider, logger: logger}
}

// ExtractFieldValue extracts one field's value from the given chunks. The
// response is trimmed but otherwise unvalidated; the sentinel (or a
// sentinel-with-error-detail string when the LLM call fails) marks the
// not-found outcome.
func (e *Extractor) ExtractFieldValue(ctx context.Context, field models.FieldDefinition, chunks []models.Chunk, chunkLimit int) string {
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}
	if len(chunks) > chunkLimit {
		chunks = chunks[:chunkLimit]
	}

	if len(chunks) == 0 {
		return NotFoundSentinel + " - No document chunks available"
	}

	prompt := buildExtractionPrompt(field, buildChunksContext(chunks))

	response, err := e.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		llm.ChatOptions{Temperature: 0, MaxTokens: 1024})
	if err != nil {
		return fmt.Sprintf("%s - Error: %v", NotFoundSentinel, err)
	}

	return strings.TrimSpace(response)
}

// GenerateAnswer answers a free-text question from the chunks, allowing the
// model to make the best inference from context (temperature 0.3).
func (e *Extractor) GenerateAnswer(ctx context.Context, label string, chunks []models.Chunk) string {
	if len(chunks) == 0 {
		return NotFoundSentinel
	}

	prompt := fmt.Sprintf(`You are an application form filler. Based on the provided information from user documents, answer the following question.

## Question:
%s

## Available Information:
%s

## Instructions:
1. Answer based on the provided documents
2. If exact information is not available, make the best inference using the context provided
3. Only return "NOT FOUND" if absolutely no relevant information exists
4. Keep the answer concise and relevant
5. For essays, synthesize information from multiple chunks if needed

## Answer:`, label, buildChunksContext(chunks))

	response, err := e.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		llm.ChatOptions{Temperature: 0.3, MaxTokens: 1000})
	if err != nil {
		e.logger.Error("Answer generation failed", "question", label, "error", err)
		return NotFoundSentinel
	}

	answer := strings.TrimSpace(response)
	if answer == "" || strings.ToUpper(answer) == NotFoundSentinel {
		return NotFoundSentinel
	}
	return answer
}

// MatchAnswerToOptions answers a closed-vocabulary question by asking the
// model to pick from the option list, then verifying the pick: exact
// membership first, then a case-insensitive bidirectional substring match
// against each option. The verification guards against the model
// paraphrasing an option instead of echoing it verbatim.
func (e *Extractor) MatchAnswerToOptions(ctx context.Context, label string, options []string, chunks []models.Chunk) string {
	if len(options) == 0 || len(chunks) == 0 {
		return NotFoundSentinel
	}

	var optionsList strings.Builder
	for _, opt := range options {
		fmt.Fprintf(&optionsList, "- %s\n", opt)
	}

	prompt := fmt.Sprintf(`You are matching user information to form options.

## Question:
%s

## Available Options:
%s
## User Information:
%s

## Instructions:
1. Find the best matching option based on user information
2. Return ONLY the option text that matches best
3. If no exact match, select the most reasonable option based on context
4. Only return "NOT FOUND" if no options seem relevant at all
5. Do not explain, just return the option

## Best Match:`, label, optionsList.String(), buildChunksContext(chunks))

	response, err := e.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		llm.ChatOptions{Temperature: 0, MaxTokens: 200})
	if err != nil {
		e.logger.Error("Option matching failed", "question", label, "error", err)
		return NotFoundSentinel
	}

	answer := strings.TrimSpace(response)

	for _, opt := range options {
		if answer == opt {
			return opt
		}
	}

	answerLower := strings.ToLower(answer)
	for _, opt := range options {
		optLower := strings.ToLower(opt)
		if strings.Contains(optLower, answerLower) || strings.Contains(answerLower, optLower) {
			return opt
		}
	}

	return NotFoundSentinel
}

func buildExtractionPrompt(field models.FieldDefinition, contextStr string) string {
	return fmt.Sprintf(`# Form Field Auto-Fill Assistant

You are a form field auto-fill assistant. Your task is to extract precise information from documents to fill specific form fields.

## Extraction Guidelines:

### 1. Semantic Matching:
- The category names in documents may differ from the expected category - use semantic understanding
- Look for information that conceptually matches what the field is asking for
- Consider variations in terminology (e.g., "personal_information" = "Personal Information" = "Contact Details")

### 2. Precision Rules:
- Extract ONLY the specific value needed, not the entire chunk
- Return the exact data point requested, nothing more

### 3. If Information Not Found:
- If the requested information is not in the documents, return exactly: "NOT FOUND"
- Do not make up or infer information

### 4. Format Rules:
Return ONLY the extracted value, nothing else.
- Do NOT include the field name
- Do NOT include labels or prefixes
- Do NOT include explanations
- Do NOT include checkmarks, symbols, or special characters
- Just the pure value

## Current Field to Fill:

**Field Name**: %s
**Information Category**: %s
**Suggested Information Source**: %s

## Available Information from Documents:

%s

## EXTRACTED VALUE:`, field.Name, field.Category, field.Source, contextStr)
}

// buildChunksContext renders each chunk with its filtering metadata so the
// model can weigh provenance.
func buildChunksContext(chunks []models.Chunk) string {
	var sb strings.Builder
	for idx, chunk := range chunks {
		source := "unknown"
		if len(chunk.Sources) > 0 {
			source = strings.Join(chunk.Sources, ", ")
		}
		fmt.Fprintf(&sb, "Chunk %d:\n  Category: %s\n  Type: %s\n  Source: %s (%s)\n  Content: %s\n\n",
			idx+1, chunk.Category, chunk.ChunkType, source, chunk.Section, chunk.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

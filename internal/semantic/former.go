package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusforms/docufill-api/internal/blocks"
	"github.com/campusforms/docufill-api/internal/llm"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/utils"
)

var (
	// ErrContextTooLarge means the combined inputs exceed the safe context
	// threshold. Raised before any LLM call; callers must split inputs or
	// use degraded chunking.
	ErrContextTooLarge = errors.New("combined documents exceed safe context length")

	// ErrParseFailure means the full parsing cascade recovered zero valid
	// blocks from the LLM response. Callers decide whether to fall back to
	// naive chunking; it is never silently an empty result.
	ErrParseFailure = errors.New("no semantic blocks could be parsed from LLM response")
)

// formationMaxTokens caps the formation response. Output size scales with the
// number of blocks, so relying on the provider default risks truncation.
const formationMaxTokens = 4000

// TokenEstimator approximates prompt size from character counts. The chars/4
// rule is crude; it is a replaceable estimate, not a tokenizer.
type TokenEstimator struct {
	CharsPerToken  int
	PromptOverhead int
	Limit          int
}

func DefaultEstimator() TokenEstimator {
	return TokenEstimator{CharsPerToken: 4, PromptOverhead: 2000, Limit: 100000}
}

// Fits reports whether text plus prompt overhead stays under the limit.
func (e TokenEstimator) Fits(text string) bool {
	estimated := len(text)/e.CharsPerToken + e.PromptOverhead
	return estimated <= e.Limit
}

// Former converts batches of raw extracted text into semantic blocks via one
// LLM call. It is a pure transform plus the external call; persistence
// belongs to the caller.
type Former struct {
	provider  llm.Provider
	estimator TokenEstimator
	logger    *utils.Logger
	now       func() time.Time
}

func NewFormer(provider llm.Provider, estimator TokenEstimator, logger *utils.Logger) *Former {
	return &Former{
		provider:  provider,
		estimator: estimator,
		logger:    logger,
		now:       time.Now,
	}
}

// Form transforms rawTexts belonging to one user and section into semantic
// blocks. Fails with ErrContextTooLarge before any LLM call when the inputs
// are too big, and with ErrParseFailure when the response yields no valid
// blocks.
func (f *Former) Form(ctx context.Context, rawTexts []models.RawTextInput, userID, section string) ([]models.Chunk, error) {
	if len(rawTexts) == 0 {
		return nil, nil
	}

	contents := make([]string, len(rawTexts))
	for i, t := range rawTexts {
		contents[i] = t.Content
	}
	combined := strings.Join(contents, "\n\n")

	if !f.estimator.Fits(combined) {
		f.logger.Warn("Context length exceeded",
			"estimated_tokens", len(combined)/f.estimator.CharsPerToken+f.estimator.PromptOverhead,
			"limit", f.estimator.Limit)
		return nil, ErrContextTooLarge
	}

	prompt := buildFormationPrompt(rawTexts)

	response, err := f.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		llm.ChatOptions{Temperature: 0, MaxTokens: formationMaxTokens})
	if err != nil {
		return nil, fmt.Errorf("semantic chunk formation failed: %w", err)
	}

	parsed := blocks.Parse(response)
	if len(parsed) == 0 {
		f.logger.Error("Failed to parse LLM response", "response_prefix", truncate(response, 500))
		return nil, ErrParseFailure
	}

	createdAt := f.now().UTC()
	semanticBlocks := make([]models.Chunk, 0, len(parsed))
	for idx, block := range parsed {
		semanticBlocks = append(semanticBlocks, models.Chunk{
			ID:                   fmt.Sprintf("%s_%s_block_%d_%d", userID, section, idx, createdAt.Unix()),
			UserID:               userID,
			Section:              section,
			BlockType:            block.Type,
			Category:             blocks.CategoryFor(block.Type),
			Summary:              block.Summary,
			Content:              block.Content,
			Sources:              block.Sources,
			Priority:             block.Priority,
			ContainsPersonalData: block.ContainsPersonalData,
			ChunkType:            models.ChunkTypeSemanticBlock,
			CreatedAt:            createdAt,
		})
	}

	return semanticBlocks, nil
}

// buildFormationPrompt enumerates the 11 block types, lists the source
// documents, and pins the exact block-delimited output format. The delimiter
// vocabulary here must match the parser's primary patterns.
func buildFormationPrompt(rawTexts []models.RawTextInput) string {
	var inventory strings.Builder
	for _, t := range rawTexts {
		fmt.Fprintf(&inventory, "- %s (%s, %d chars)\n", t.SourceFile, t.FileType, len(t.Content))
	}

	var typeList strings.Builder
	for i, blockType := range blocks.AllTypes() {
		fmt.Fprintf(&typeList, "%d. %s - %s\n", i+1, blockType, blocks.Describe(blockType))
	}

	return fmt.Sprintf(`You are an expert at restructuring college application documents into semantic blocks.

TASK: Reorganize the provided documents into meaningful semantic blocks. Each block should represent one complete unit of related information that belongs together.

THE 11 SEMANTIC BLOCK TYPES YOU MUST USE:
%s
SOURCE DOCUMENTS:
%s
RESTRUCTURING RULES:
- Group all related information from multiple documents into single blocks
- If a topic is not present in documents, do NOT create an empty block
- Each block should be complete and self-contained
- Preserve exact information but reorganize for clarity
- Track which source files contributed to each block
- Keep original data accuracy - do not infer or add information
- When extracting content, clearly attribute facts to their source files

RESPONSE FORMAT:
Return the blocks in plain text format (NOT JSON). Use this structure for each block:

%s
BLOCK_TYPE: PERSONAL_PROFILE
SUMMARY: One sentence summary of what this block contains
SOURCES: source_file_1, source_file_2
PRIORITY: high/medium/low
CONTAINS_PERSONAL_DATA: true/false
CONTENT:
The reorganized and grouped content for this block goes here.
Include all relevant information in readable text format.
%s

[Continue with more blocks as needed. Only include blocks that have content in the documents.]

DOCUMENTS TO RESTRUCTURE (Each document is marked with its source file name):
%s

Now restructure these documents into semantic blocks:`,
		typeList.String(),
		inventory.String(),
		blocks.BlockStartMarker,
		blocks.BlockEndMarker,
		markedDocuments(rawTexts))
}

// markedDocuments fences each document with its source file name so the
// model can attribute content.
func markedDocuments(rawTexts []models.RawTextInput) string {
	fence := strings.Repeat("=", 80)
	marked := make([]string, 0, len(rawTexts))

	for idx, t := range rawTexts {
		marked = append(marked, fmt.Sprintf("\n%s\n[DOCUMENT %d] Source: %s | Type: %s\n%s\n%s\n%s\n[END %s]\n%s\n",
			fence, idx+1, t.SourceFile, t.FileType, fence, t.Content, fence, t.SourceFile, fence))
	}

	return strings.Join(marked, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

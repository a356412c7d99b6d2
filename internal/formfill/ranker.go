package formfill

import (
	"sort"
	"strings"

	"github.com/campusforms/docufill-api/internal/models"
)

// DefaultMaxChunks bounds how many chunks ranking returns for one field.
const DefaultMaxChunks = 200

// OptimizeChunksForField reorders and truncates the chunk pool to the subset
// most likely to answer a field in the given category.
//
// With useOptimization false this is an identity truncation: the first
// maxChunks chunks in input order, untouched, for callers that want
// exhaustive context.
//
// With it enabled, chunks whose category matches the field category by
// bidirectional lowercase substring (catches near-synonyms like
// "personal_info" vs "personal_information" without embeddings) rank ahead of
// all others; within each group longer chunks come first, on the heuristic
// that richer chunks more often carry the needed fact. The result is then
// truncated to maxChunks.
func OptimizeChunksForField(chunks []models.Chunk, fieldCategory string, maxChunks int, useOptimization bool) []models.Chunk {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}

	if !useOptimization {
		if len(chunks) > maxChunks {
			return chunks[:maxChunks]
		}
		return chunks
	}

	fieldCategoryLower := strings.ToLower(fieldCategory)

	optimized := make([]models.Chunk, len(chunks))
	copy(optimized, chunks)

	matched := func(chunk models.Chunk) bool {
		chunkCategory := strings.ToLower(chunk.Category)
		return strings.Contains(chunkCategory, fieldCategoryLower) ||
			strings.Contains(fieldCategoryLower, chunkCategory)
	}

	// Category match is the primary sort key, content length the secondary.
	sort.SliceStable(optimized, func(i, j int) bool {
		mi, mj := matched(optimized[i]), matched(optimized[j])
		if mi != mj {
			return mi
		}
		return len(optimized[i].Content) > len(optimized[j].Content)
	})

	if len(optimized) > maxChunks {
		optimized = optimized[:maxChunks]
	}
	return optimized
}

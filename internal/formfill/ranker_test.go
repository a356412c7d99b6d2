package formfill

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusforms/docufill-api/internal/models"
)

func rankerFixture() []models.Chunk {
	return []models.Chunk{
		{ID: "c1", Category: "testing", Content: "short"},
		{ID: "c2", Category: "personal", Content: "a very long chunk of content about something else entirely"},
		{ID: "c3", Category: "testing", Content: "medium length text"},
	}
}

func TestOptimizeChunksForField_BypassIsIdentity(t *testing.T) {
	chunks := rankerFixture()

	result := OptimizeChunksForField(chunks, "testing", 200, false)

	assert.Equal(t, []string{"c1", "c2", "c3"}, chunkIDs(result))
}

func TestOptimizeChunksForField_BypassTruncates(t *testing.T) {
	chunks := rankerFixture()

	result := OptimizeChunksForField(chunks, "testing", 2, false)

	assert.Equal(t, []string{"c1", "c2"}, chunkIDs(result))
}

func TestOptimizeChunksForField_MatchesRankAheadOfNonMatches(t *testing.T) {
	chunks := rankerFixture()

	result := OptimizeChunksForField(chunks, "testing", 200, true)

	// Both category matches precede the non-match, even though the
	// non-match has the longest content. Within the matched group the
	// longer chunk wins.
	assert.Equal(t, []string{"c3", "c1", "c2"}, chunkIDs(result))
}

func TestOptimizeChunksForField_SubstringMatchIsBidirectional(t *testing.T) {
	chunks := []models.Chunk{
		{ID: "other", Category: "employment", Content: "x"},
		{ID: "narrow", Category: "info", Content: "x"},
		{ID: "wide", Category: "personal_information", Content: "x"},
	}

	// "personal_info" is a substring of "personal_information" and
	// contains "info"; both directions count as a match.
	result := OptimizeChunksForField(chunks, "personal_info", 200, true)

	assert.Equal(t, []string{"narrow", "wide", "other"}, chunkIDs(result))
}

func TestOptimizeChunksForField_CaseInsensitive(t *testing.T) {
	chunks := []models.Chunk{
		{ID: "a", Category: "EDUCATION", Content: "x"},
		{ID: "b", Category: "finance", Content: "xx"},
	}

	result := OptimizeChunksForField(chunks, "Education", 200, true)

	assert.Equal(t, []string{"a", "b"}, chunkIDs(result))
}

func TestOptimizeChunksForField_DoesNotMutateInput(t *testing.T) {
	chunks := rankerFixture()

	_ = OptimizeChunksForField(chunks, "testing", 200, true)

	assert.Equal(t, []string{"c1", "c2", "c3"}, chunkIDs(chunks))
}

func TestOptimizeChunksForField_TruncatesAfterRanking(t *testing.T) {
	chunks := rankerFixture()

	result := OptimizeChunksForField(chunks, "testing", 2, true)

	assert.Equal(t, []string{"c3", "c1"}, chunkIDs(result))
}

func chunkIDs(chunks []models.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}

package chunker

import (
	"strings"

	"github.com/campusforms/docufill-api/internal/blocks"
	"github.com/campusforms/docufill-api/internal/models"
)

// Defaults for the naive fixed-window fallback used when semantic formation
// is unavailable or fails.
const (
	DefaultChunkSize = 2000
	DefaultOverlap   = 200
)

// Chunker splits plain text into overlapping windows with sentence-boundary
// awareness.
type Chunker struct {
	ChunkSize int
	Overlap   int
}

func New() *Chunker {
	return &Chunker{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Split breaks text into chunks of at most ChunkSize characters, carrying
// Overlap characters of trailing context into each subsequent chunk. Chunk
// boundaries prefer sentence ends. Text at or under ChunkSize comes back as a
// single chunk. Ownership fields (ID, user, section) are left for the caller
// to assign before storage.
func (c *Chunker) Split(text, sourceFile string) []models.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if len(text) <= c.ChunkSize {
		return []models.Chunk{c.newChunk(text, sourceFile)}
	}

	sentences := strings.Split(text, ". ")
	var chunks []models.Chunk
	var current string

	for i, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if i < len(sentences)-1 {
			sentence += "."
		}

		if len(current)+len(sentence)+1 > c.ChunkSize && strings.TrimSpace(current) != "" {
			chunks = append(chunks, c.newChunk(strings.TrimSpace(current), sourceFile))

			// Seed the next window with the tail of this one so facts that
			// straddle a boundary stay queryable.
			overlap := current
			if len(current) > c.Overlap {
				overlap = current[len(current)-c.Overlap:]
			}
			current = overlap + " " + sentence
		} else if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, c.newChunk(strings.TrimSpace(current), sourceFile))
	}

	return chunks
}

func (c *Chunker) newChunk(text, sourceFile string) models.Chunk {
	chunk := models.Chunk{
		BlockType: blocks.TypeUnknown,
		Category:  blocks.CategoryFallback,
		Content:   text,
		ChunkType: models.ChunkTypeDocumentContent,
		Priority:  blocks.PriorityMedium,
	}
	if sourceFile != "" {
		chunk.Sources = []string{sourceFile}
	}
	return chunk
}

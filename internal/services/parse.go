package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campusforms/docufill-api/internal/blocks"
	"github.com/campusforms/docufill-api/internal/chunker"
	"github.com/campusforms/docufill-api/internal/extractor"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/repository"
	"github.com/campusforms/docufill-api/internal/semantic"
	"github.com/campusforms/docufill-api/internal/storage"
	"github.com/campusforms/docufill-api/internal/utils"
)

// ParseService turns uploaded documents into stored retrievable chunks:
// download → text extraction → semantic formation → store. Formation failures
// degrade to naive fixed-window chunking so a parse request always yields
// queryable chunks.
type ParseService struct {
	store       storage.Storage
	chunks      repository.ChunkRepository
	former      *semantic.Former
	vision      *extractor.VisionExtractor
	chunker     *chunker.Chunker
	logger      *utils.Logger
	concurrency int
	now         func() time.Time
}

func NewParseService(
	store storage.Storage,
	chunks repository.ChunkRepository,
	former *semantic.Former,
	vision *extractor.VisionExtractor,
	concurrency int,
	logger *utils.Logger,
) *ParseService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ParseService{
		store:       store,
		chunks:      chunks,
		former:      former,
		vision:      vision,
		chunker:     chunker.New(),
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// ParseAllFiles processes every uploaded file of the user. Files are handled
// concurrently but independently: one file's failure is reported in its own
// result and never aborts the rest.
func (s *ParseService) ParseAllFiles(ctx context.Context, userID string) ([]models.ParseFileResult, error) {
	files, err := s.store.ListUserFiles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user files: %w", err)
	}
	if len(files) == 0 {
		return []models.ParseFileResult{}, nil
	}

	results := make([]models.ParseFileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.ParseFile(gctx, userID, file)
			if err != nil {
				s.logger.Error("File parse failed",
					"user_id", userID, "file", file.Filename, "error", err)
				results[i] = models.ParseFileResult{
					Status:     "error",
					SourceFile: file.Filename,
					StorageKey: file.Key,
					Section:    file.Section,
					FileType:   file.FileType,
				}
				return nil
			}
			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParseFile processes one uploaded file end to end and stores the resulting
// chunks, replacing any chunks a previous parse of the same file produced.
func (s *ParseService) ParseFile(ctx context.Context, userID string, file models.StoredFile) (*models.ParseFileResult, error) {
	data, err := s.store.Download(ctx, file.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", file.Key, err)
	}

	chunks, usedSemantic, err := s.extractAndChunk(ctx, userID, file, data)
	if err != nil {
		return nil, err
	}

	deleted, err := s.chunks.DeleteBySourceFile(ctx, userID, file.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate previous chunks: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("Replaced chunks from previous parse",
			"user_id", userID, "file", file.Filename, "deleted", deleted)
	}

	if err := s.chunks.StoreBatch(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	return &models.ParseFileResult{
		Status:               "success",
		DocumentID:           utils.GenerateID(),
		SourceFile:           file.Filename,
		StorageKey:           file.Key,
		Section:              file.Section,
		FileType:             file.FileType,
		ChunksCreated:        len(chunks),
		Chunks:               chunks,
		UsedSemanticChunking: usedSemantic,
	}, nil
}

func (s *ParseService) extractAndChunk(ctx context.Context, userID string, file models.StoredFile, data []byte) ([]models.Chunk, bool, error) {
	if file.FileType == "image" {
		return s.chunkImage(ctx, userID, file, data)
	}

	text, err := s.extractText(ctx, file, data)
	if err != nil {
		return nil, false, err
	}

	rawTexts := []models.RawTextInput{{
		SourceFile: file.Filename,
		FileType:   file.FileType,
		Content:    text,
	}}

	formed, err := s.former.Form(ctx, rawTexts, userID, file.Section)
	if err == nil && len(formed) > 0 {
		return formed, true, nil
	}
	if err != nil {
		s.logger.Warn("Semantic formation failed, falling back to fixed-window chunking",
			"user_id", userID, "file", file.Filename, "error", err)
	}

	fallback := s.chunker.Split(text, file.Filename)
	if len(fallback) == 0 {
		return nil, false, fmt.Errorf("no chunks produced from %s", file.Filename)
	}
	s.assignOwnership(fallback, userID, file.Section)
	return fallback, false, nil
}

func (s *ParseService) extractText(ctx context.Context, file models.StoredFile, data []byte) (string, error) {
	switch file.FileType {
	case "pdf":
		text, err := extractor.ExtractPDF(data)
		if err == nil && !extractor.IsLowYield(text) {
			return text, nil
		}
		// Scanned or image-only PDF: retry through vision OCR.
		s.logger.Info("PDF text extraction yielded too little, trying vision",
			"file", file.Filename)
		visionText, visionErr := s.vision.ExtractImageText(ctx, data)
		if visionErr == nil {
			return visionText, nil
		}
		if err == nil {
			// Keep the thin text rather than fail outright.
			return text, nil
		}
		return "", fmt.Errorf("pdf extraction failed (%v) and vision fallback failed: %w", err, visionErr)
	case "txt":
		return extractor.ExtractTXT(data)
	case "docx":
		return extractor.ExtractDOCX(data)
	default:
		return "", fmt.Errorf("unsupported file type %q for %s", file.FileType, file.Filename)
	}
}

// chunkImage extracts image content through vision. The structured vision
// chunks feed semantic formation as flattened text; when formation fails they
// are stored directly as raw extraction chunks so the content stays
// retrievable.
func (s *ParseService) chunkImage(ctx context.Context, userID string, file models.StoredFile, data []byte) ([]models.Chunk, bool, error) {
	imageChunks, err := s.vision.ExtractImage(ctx, data)
	if err != nil {
		return nil, false, fmt.Errorf("image extraction failed for %s: %w", file.Filename, err)
	}

	text := flattenImageChunks(imageChunks)
	rawTexts := []models.RawTextInput{{
		SourceFile: file.Filename,
		FileType:   "image",
		Content:    text,
	}}

	formed, err := s.former.Form(ctx, rawTexts, userID, file.Section)
	if err == nil && len(formed) > 0 {
		return formed, true, nil
	}
	if err != nil {
		s.logger.Warn("Semantic formation failed for image, storing raw extractions",
			"user_id", userID, "file", file.Filename, "error", err)
	}

	createdAt := s.now().UTC()
	raw := make([]models.Chunk, 0, len(imageChunks))
	for idx, ic := range imageChunks {
		raw = append(raw, models.Chunk{
			ID:        fmt.Sprintf("%s_%s_raw_%d_%d", userID, file.Section, idx, createdAt.Unix()),
			UserID:    userID,
			Section:   file.Section,
			BlockType: blocks.TypeUnknown,
			Category:  ic.Category,
			Content:   ic.Content,
			Sources:   []string{file.Filename},
			Priority:  blocks.PriorityMedium,
			ChunkType: models.ChunkTypeRawExtraction,
			CreatedAt: createdAt,
		})
	}
	return raw, false, nil
}

func (s *ParseService) assignOwnership(chunks []models.Chunk, userID, section string) {
	createdAt := s.now().UTC()
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%s_%s_chunk_%d_%d", userID, section, i, createdAt.Unix())
		chunks[i].UserID = userID
		chunks[i].Section = section
		chunks[i].CreatedAt = createdAt
	}
}

func flattenImageChunks(imageChunks []extractor.ImageChunk) string {
	var parts []string
	for _, ic := range imageChunks {
		if ic.Category != "" {
			parts = append(parts, fmt.Sprintf("[%s]\n%s", ic.Category, ic.Content))
		} else {
			parts = append(parts, ic.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

package formfill

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/repository"
	"github.com/campusforms/docufill-api/internal/utils"
)

// Service fills form fields and question sets from a user's stored chunks.
// Each field is ranked and extracted independently (fan-out per field, not
// one combined call); a single field's failure never aborts the batch, it
// degrades to the not-found sentinel. LLM round-trips dominate cost, so
// fan-out is bounded by a worker pool sized to the provider's rate limit.
type Service struct {
	chunks           repository.ChunkRepository
	extractor        *Extractor
	logger           *utils.Logger
	concurrency      int
	generalQuestions []models.Question
	schoolQuestions  map[string][]models.Question
}

func NewService(
	chunks repository.ChunkRepository,
	extractor *Extractor,
	generalQuestions []models.Question,
	schoolQuestions map[string][]models.Question,
	concurrency int,
	logger *utils.Logger,
) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		chunks:           chunks,
		extractor:        extractor,
		logger:           logger,
		concurrency:      concurrency,
		generalQuestions: generalQuestions,
		schoolQuestions:  schoolQuestions,
	}
}

// GetUserChunks retrieves the user's chunk pool, optionally filtered by
// section. Store errors degrade to an empty pool rather than failing the
// fill request.
func (s *Service) GetUserChunks(ctx context.Context, userID, section string) []models.Chunk {
	chunks, err := s.chunks.QueryByUserAndSection(ctx, userID, section)
	if err != nil {
		s.logger.Error("Failed to retrieve chunks", "user_id", userID, "error", err)
		return nil
	}
	return chunks
}

// Sections lists the sections of the configured general question set.
func (s *Service) Sections() []string {
	return SectionsOf(s.generalQuestions)
}

// GeneralQuestionsBySection returns the configured general questions for one
// section.
func (s *Service) GeneralQuestionsBySection(section string) []models.Question {
	var out []models.Question
	for _, q := range s.generalQuestions {
		if q.Section == section {
			out = append(out, q)
		}
	}
	return out
}

// FillMultipleFields extracts a value for every field definition. The result
// set is always complete: unresolved fields carry the sentinel and are
// counted in NotFoundFields. The only error returned is context
// cancellation, which stops issuing further LLM calls promptly.
func (s *Service) FillMultipleFields(ctx context.Context, userID string, fields []models.FieldDefinition, section string, useOptimization bool) (*models.FillFieldsResult, error) {
	allChunks := s.GetUserChunks(ctx, userID, section)
	if len(allChunks) == 0 {
		return &models.FillFieldsResult{
			Status:  "error",
			Message: "No document chunks found for user",
			Results: map[string]string{},
		}, nil
	}

	answers := make([]string, len(fields))
	answered := make([]bool, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, field := range fields {
		if field.Name == "" {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			optimized := OptimizeChunksForField(allChunks, field.Category, DefaultMaxChunks, useOptimization)
			answers[i] = s.extractor.ExtractFieldValue(gctx, field, optimized, DefaultChunkLimit)
			answered[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[string]string)
	foundCount := 0
	notFoundCount := 0
	for i, field := range fields {
		if !answered[i] {
			continue
		}
		results[field.Name] = answers[i]
		if IsNotFound(answers[i]) {
			notFoundCount++
		} else {
			foundCount++
		}
	}

	successRate := 0.0
	if len(fields) > 0 {
		successRate = roundPercent(float64(foundCount) / float64(len(fields)) * 100)
	}

	return &models.FillFieldsResult{
		Status:               "success",
		TotalFields:          len(fields),
		FoundFields:          foundCount,
		NotFoundFields:       notFoundCount,
		SuccessRate:          successRate,
		TotalChunksAvailable: len(allChunks),
		Results:              results,
	}, nil
}

// FillSchoolQuestions fills every configured question for one school.
func (s *Service) FillSchoolQuestions(ctx context.Context, userID, schoolID string, useOptimization bool) (*models.FillQuestionsResult, error) {
	questions, ok := s.schoolQuestions[schoolID]
	if !ok {
		return &models.FillQuestionsResult{
			Status:          "error",
			UserID:          userID,
			SchoolID:        schoolID,
			Message:         "Unknown school ID: " + schoolID,
			FilledQuestions: []models.FilledQuestion{},
		}, nil
	}

	allChunks := s.GetUserChunks(ctx, userID, "")
	if len(allChunks) == 0 {
		return &models.FillQuestionsResult{
			Status:          "warning",
			UserID:          userID,
			SchoolID:        schoolID,
			Message:         "No document chunks found for user",
			FilledQuestions: []models.FilledQuestion{},
		}, nil
	}

	filled, err := s.fillQuestions(ctx, allChunks, questions, useOptimization, func(q models.Question) string {
		// The question label doubles as the category hint for ranking.
		return q.Label
	})
	if err != nil {
		return nil, err
	}

	result := &models.FillQuestionsResult{
		Status:          "success",
		UserID:          userID,
		SchoolID:        schoolID,
		TotalQuestions:  len(filled),
		FilledQuestions: filled,
	}
	for _, q := range filled {
		if q.Filled {
			result.FilledCount++
			if q.Required {
				result.RequiredFilled++
			}
		}
		if q.Required {
			result.RequiredTotal++
		}
	}
	if result.TotalQuestions > 0 {
		result.FillPercentage = roundPercent(float64(result.FilledCount) / float64(result.TotalQuestions) * 100)
	}

	return result, nil
}

// FillGeneralQuestions fills the whole configured general question set,
// section by section.
func (s *Service) FillGeneralQuestions(ctx context.Context, userID string, useOptimization bool) (*models.FillQuestionsResult, error) {
	if len(s.generalQuestions) == 0 {
		return &models.FillQuestionsResult{
			Status:          "error",
			UserID:          userID,
			Message:         "General questions not loaded",
			FilledQuestions: []models.FilledQuestion{},
		}, nil
	}

	allChunks := s.GetUserChunks(ctx, userID, "")
	if len(allChunks) == 0 {
		return &models.FillQuestionsResult{
			Status:          "warning",
			UserID:          userID,
			Message:         "No document chunks found for user",
			FilledQuestions: []models.FilledQuestion{},
		}, nil
	}

	var ordered []models.Question
	for _, section := range s.Sections() {
		ordered = append(ordered, s.GeneralQuestionsBySection(section)...)
	}

	filled, err := s.fillQuestions(ctx, allChunks, ordered, useOptimization, func(q models.Question) string {
		// General questions rank by their section.
		return q.Section
	})
	if err != nil {
		return nil, err
	}

	result := &models.FillQuestionsResult{
		Status:          "success",
		UserID:          userID,
		TotalQuestions:  len(filled),
		FilledQuestions: filled,
	}
	for _, q := range filled {
		if q.Filled {
			result.FilledCount++
		}
	}
	if result.TotalQuestions > 0 {
		result.FillPercentage = roundPercent(float64(result.FilledCount) / float64(result.TotalQuestions) * 100)
	}

	return result, nil
}

// fillQuestions answers each question independently with bounded
// concurrency. categoryHint picks the ranking hint for a question.
func (s *Service) fillQuestions(ctx context.Context, allChunks []models.Chunk, questions []models.Question, useOptimization bool, categoryHint func(models.Question) string) ([]models.FilledQuestion, error) {
	filled := make([]models.FilledQuestion, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, question := range questions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			filled[i] = s.fillOne(gctx, allChunks, question, categoryHint(question), useOptimization)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filled, nil
}

func (s *Service) fillOne(ctx context.Context, allChunks []models.Chunk, question models.Question, hint string, useOptimization bool) models.FilledQuestion {
	optimized := OptimizeChunksForField(allChunks, hint, DefaultMaxChunks, useOptimization)

	var answer string
	switch {
	case freeTextTypes[question.Type]:
		answer = s.extractor.GenerateAnswer(ctx, question.Label, optimized)
	case selectTypes[question.Type] && len(question.Options) > 0:
		answer = s.extractor.MatchAnswerToOptions(ctx, question.Label, question.Options, optimized)
	default:
		answer = NotFoundSentinel
	}

	isFilled := !IsNotFound(answer)

	// Attribute the answer to the top-ranked chunks' source files.
	var sourceFiles []string
	if isFilled {
		seen := make(map[string]bool)
		top := optimized
		if len(top) > 3 {
			top = top[:3]
		}
		for _, chunk := range top {
			for _, src := range chunk.Sources {
				if !seen[src] {
					seen[src] = true
					sourceFiles = append(sourceFiles, src)
				}
			}
		}
	}
	if sourceFiles == nil {
		sourceFiles = []string{}
	}

	return models.FilledQuestion{
		QuestionID:  question.ID,
		Label:       question.Label,
		Section:     question.Section,
		Type:        question.Type,
		Required:    question.Required,
		Answer:      answer,
		SourceFiles: sourceFiles,
		Filled:      isFilled,
		Logic:       question.Logic,
	}
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

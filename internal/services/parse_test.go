package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforms/docufill-api/internal/extractor"
	"github.com/campusforms/docufill-api/internal/llm"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/semantic"
	"github.com/campusforms/docufill-api/internal/utils"
)

// fakeStorage is an in-memory blob store keyed by object key.
type fakeStorage struct {
	objects map[string][]byte
	files   []models.StoredFile
	listErr error
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return data, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) ListUserFiles(_ context.Context, _ string) ([]models.StoredFile, error) {
	return f.files, f.listErr
}

func (f *fakeStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

func (f *fakeStorage) ObjectKey(userID, section, filename string) string {
	return fmt.Sprintf("user-uploads/%s/%s/%s", userID, section, filename)
}

// recordingChunkRepo records stores and deletions.
type recordingChunkRepo struct {
	stored  []models.Chunk
	deleted []string
}

func (r *recordingChunkRepo) Store(_ context.Context, chunk *models.Chunk) error {
	r.stored = append(r.stored, *chunk)
	return nil
}

func (r *recordingChunkRepo) StoreBatch(_ context.Context, chunks []models.Chunk) error {
	r.stored = append(r.stored, chunks...)
	return nil
}

func (r *recordingChunkRepo) QueryByUserAndSection(_ context.Context, _, _ string) ([]models.Chunk, error) {
	return r.stored, nil
}

func (r *recordingChunkRepo) DeleteBySourceFile(_ context.Context, _, sourceFile string) (int, error) {
	r.deleted = append(r.deleted, sourceFile)
	return 0, nil
}

const formationResponse = `---BLOCK_START---
BLOCK_TYPE: ACADEMIC_PERFORMANCE
SUMMARY: Transcript summary
SOURCES: transcript.txt
PRIORITY: high
CONTAINS_PERSONAL_DATA: true
CONTENT:
GPA 3.9 at Lincoln High School.
---BLOCK_END---`

func newParseFixture(chatMock, visionMock *llm.MockProvider) (*ParseService, *fakeStorage, *recordingChunkRepo) {
	logger := utils.NewLogger("error")
	former := semantic.NewFormer(chatMock, semantic.DefaultEstimator(), logger)
	vision := extractor.NewVisionExtractor(visionMock)
	store := &fakeStorage{objects: map[string][]byte{}}
	repo := &recordingChunkRepo{}
	svc := NewParseService(store, repo, former, vision, 1, logger)
	return svc, store, repo
}

func storedTxt(store *fakeStorage, userID, section, filename, content string) models.StoredFile {
	key := store.ObjectKey(userID, section, filename)
	store.objects[key] = []byte(content)
	file := models.StoredFile{
		Key:      key,
		Filename: filename,
		Section:  section,
		FileType: "txt",
	}
	store.files = append(store.files, file)
	return file
}

func TestParseFile_SemanticPath(t *testing.T) {
	chatMock := &llm.MockProvider{Responses: []string{formationResponse}}
	svc, store, repo := newParseFixture(chatMock, &llm.MockProvider{})

	file := storedTxt(store, "u1", "application", "transcript.txt", "GPA 3.9 at Lincoln High School.")

	result, err := svc.ParseFile(context.Background(), "u1", file)
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.True(t, result.UsedSemanticChunking)
	assert.Equal(t, 1, result.ChunksCreated)
	require.Len(t, repo.stored, 1)
	assert.Equal(t, models.ChunkTypeSemanticBlock, repo.stored[0].ChunkType)
	assert.Equal(t, "u1", repo.stored[0].UserID)
	assert.Equal(t, "application", repo.stored[0].Section)
	// Prior chunks of the same file are invalidated before storing.
	assert.Equal(t, []string{"transcript.txt"}, repo.deleted)
}

func TestParseFile_FallsBackToWindowChunking(t *testing.T) {
	chatMock := &llm.MockProvider{Err: errors.New("llm down")}
	svc, store, repo := newParseFixture(chatMock, &llm.MockProvider{})

	file := storedTxt(store, "u1", "application", "notes.txt", "Some notes about activities.")

	result, err := svc.ParseFile(context.Background(), "u1", file)
	require.NoError(t, err)

	assert.False(t, result.UsedSemanticChunking)
	require.NotEmpty(t, repo.stored)
	assert.Equal(t, models.ChunkTypeDocumentContent, repo.stored[0].ChunkType)
	assert.Equal(t, "u1", repo.stored[0].UserID)
	assert.NotEmpty(t, repo.stored[0].ID)
}

func TestParseFile_ImageRawExtractionFallback(t *testing.T) {
	chatMock := &llm.MockProvider{Err: errors.New("llm down")}
	visionMock := &llm.MockProvider{Responses: []string{
		`{"information_chunks": [{"content": "SAT 1520", "category": "testing"}]}`,
	}}
	svc, store, repo := newParseFixture(chatMock, visionMock)

	key := store.ObjectKey("u1", "application", "scores.jpg")
	store.objects[key] = []byte{0xFF, 0xD8, 0xFF}
	file := models.StoredFile{Key: key, Filename: "scores.jpg", Section: "application", FileType: "image"}

	result, err := svc.ParseFile(context.Background(), "u1", file)
	require.NoError(t, err)

	assert.False(t, result.UsedSemanticChunking)
	require.Len(t, repo.stored, 1)
	assert.Equal(t, models.ChunkTypeRawExtraction, repo.stored[0].ChunkType)
	assert.Equal(t, "testing", repo.stored[0].Category)
	assert.Equal(t, []string{"scores.jpg"}, repo.stored[0].Sources)
}

func TestParseFile_ImageSemanticPath(t *testing.T) {
	chatMock := &llm.MockProvider{Responses: []string{formationResponse}}
	visionMock := &llm.MockProvider{Responses: []string{
		`{"information_chunks": [{"content": "GPA 3.9", "category": "education"}]}`,
	}}
	svc, store, repo := newParseFixture(chatMock, visionMock)

	key := store.ObjectKey("u1", "application", "transcript.jpg")
	store.objects[key] = []byte{0xFF, 0xD8, 0xFF}
	file := models.StoredFile{Key: key, Filename: "transcript.jpg", Section: "application", FileType: "image"}

	result, err := svc.ParseFile(context.Background(), "u1", file)
	require.NoError(t, err)

	assert.True(t, result.UsedSemanticChunking)
	require.Len(t, repo.stored, 1)
	assert.Equal(t, models.ChunkTypeSemanticBlock, repo.stored[0].ChunkType)
}

func TestParseAllFiles_IsolatesFailures(t *testing.T) {
	chatMock := &llm.MockProvider{Responses: []string{formationResponse}}
	svc, store, _ := newParseFixture(chatMock, &llm.MockProvider{})

	good := storedTxt(store, "u1", "application", "transcript.txt", "GPA 3.9 at Lincoln High School.")
	// A listed file with no backing object fails to download.
	store.files = append(store.files, models.StoredFile{
		Key:      "user-uploads/u1/application/missing.txt",
		Filename: "missing.txt",
		Section:  "application",
		FileType: "txt",
	})

	results, err := svc.ParseAllFiles(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, good.Filename, results[0].SourceFile)
	assert.Equal(t, "error", results[1].Status)
	assert.Equal(t, "missing.txt", results[1].SourceFile)
}

func TestParseAllFiles_NoFiles(t *testing.T) {
	svc, _, _ := newParseFixture(&llm.MockProvider{}, &llm.MockProvider{})

	results, err := svc.ParseAllFiles(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestParseFile_UnsupportedType(t *testing.T) {
	svc, store, _ := newParseFixture(&llm.MockProvider{}, &llm.MockProvider{})

	key := store.ObjectKey("u1", "application", "archive.zip")
	store.objects[key] = []byte("zip")
	file := models.StoredFile{Key: key, Filename: "archive.zip", Section: "application", FileType: "unknown"}

	_, err := svc.ParseFile(context.Background(), "u1", file)
	assert.Error(t, err)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/campusforms/docufill-api/internal/blocks"
	"github.com/campusforms/docufill-api/internal/models"
)

const testSchema = `
CREATE TABLE chunks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    section TEXT NOT NULL,
    block_type TEXT NOT NULL DEFAULT 'UNKNOWN',
    category TEXT NOT NULL DEFAULT 'custom_documentation',
    summary TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    sources TEXT NOT NULL DEFAULT '[]',
    priority TEXT NOT NULL DEFAULT 'medium',
    contains_personal_data INTEGER NOT NULL DEFAULT 0,
    chunk_type TEXT NOT NULL DEFAULT 'semantic_block',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    salt TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func testChunk(id, userID, section string, sources []string) models.Chunk {
	return models.Chunk{
		ID:        id,
		UserID:    userID,
		Section:   section,
		BlockType: blocks.TypeAcademicPerformance,
		Category:  "education",
		Summary:   "summary",
		Content:   "content of " + id,
		Sources:   sources,
		Priority:  blocks.PriorityMedium,
		ChunkType: models.ChunkTypeSemanticBlock,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestChunkRepository_StoreAndQuery(t *testing.T) {
	repo := NewChunkRepository(newTestDB(t))
	ctx := context.Background()

	chunk := testChunk("c1", "u1", "application", []string{"transcript.pdf"})
	require.NoError(t, repo.Store(ctx, &chunk))

	got, err := repo.QueryByUserAndSection(ctx, "u1", "application")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, blocks.TypeAcademicPerformance, got[0].BlockType)
	assert.Equal(t, []string{"transcript.pdf"}, got[0].Sources)
}

func TestChunkRepository_QueryFiltersByUserAndSection(t *testing.T) {
	repo := NewChunkRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.StoreBatch(ctx, []models.Chunk{
		testChunk("c1", "u1", "application", nil),
		testChunk("c2", "u1", "essays", nil),
		testChunk("c3", "u2", "application", nil),
	}))

	all, err := repo.QueryByUserAndSection(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	essays, err := repo.QueryByUserAndSection(ctx, "u1", "essays")
	require.NoError(t, err)
	require.Len(t, essays, 1)
	assert.Equal(t, "c2", essays[0].ID)

	none, err := repo.QueryByUserAndSection(ctx, "u3", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestChunkRepository_DeleteBySourceFile(t *testing.T) {
	repo := NewChunkRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.StoreBatch(ctx, []models.Chunk{
		testChunk("c1", "u1", "application", []string{"transcript.pdf"}),
		testChunk("c2", "u1", "application", []string{"transcript.pdf", "essay.docx"}),
		testChunk("c3", "u1", "application", []string{"essay.docx"}),
		testChunk("c4", "u2", "application", []string{"transcript.pdf"}),
	}))

	deleted, err := repo.DeleteBySourceFile(ctx, "u1", "transcript.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := repo.QueryByUserAndSection(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c3", remaining[0].ID)

	// Other users' chunks are untouched.
	other, err := repo.QueryByUserAndSection(ctx, "u2", "")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestChunkRepository_DeleteBySourceFile_ExactFilenameOnly(t *testing.T) {
	repo := NewChunkRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, &models.Chunk{
		ID: "c1", UserID: "u1", Section: "application",
		BlockType: blocks.TypeUnknown, Category: "x", Content: "x",
		Sources: []string{"transcript_old.pdf"}, Priority: blocks.PriorityMedium,
		ChunkType: models.ChunkTypeSemanticBlock, CreatedAt: time.Now(),
	}))

	deleted, err := repo.DeleteBySourceFile(ctx, "u1", "transcript.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &models.User{
		ID:           "u1",
		Email:        "jane@example.com",
		Name:         "Jane",
		PasswordHash: "hash",
		Salt:         "salt",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "jane@example.com", byID.Email)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

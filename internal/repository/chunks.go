package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campusforms/docufill-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// ChunkRepository is the flat filterable store for chunks. Chunks are
// append-only and immutable once written; the only delete path is the
// reprocessing policy that invalidates a source file's prior chunks.
type ChunkRepository interface {
	Store(ctx context.Context, chunk *models.Chunk) error
	StoreBatch(ctx context.Context, chunks []models.Chunk) error
	QueryByUserAndSection(ctx context.Context, userID, section string) ([]models.Chunk, error)
	DeleteBySourceFile(ctx context.Context, userID, sourceFile string) (int, error)
}

type chunkRepository struct {
	db *sqlx.DB
}

func NewChunkRepository(db *sqlx.DB) ChunkRepository {
	return &chunkRepository{db: db}
}

func (r *chunkRepository) Store(ctx context.Context, chunk *models.Chunk) error {
	sourcesJSON, err := json.Marshal(chunk.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	query := `
		INSERT INTO chunks (id, user_id, section, block_type, category, summary, content,
		                    sources, priority, contains_personal_data, chunk_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		chunk.ID,
		chunk.UserID,
		chunk.Section,
		chunk.BlockType,
		chunk.Category,
		chunk.Summary,
		chunk.Content,
		string(sourcesJSON),
		chunk.Priority,
		chunk.ContainsPersonalData,
		chunk.ChunkType,
		chunk.CreatedAt,
	)

	return err
}

func (r *chunkRepository) StoreBatch(ctx context.Context, chunks []models.Chunk) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chunks (id, user_id, section, block_type, category, summary, content,
		                    sources, priority, contains_personal_data, chunk_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for i := range chunks {
		chunk := &chunks[i]
		sourcesJSON, err := json.Marshal(chunk.Sources)
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query,
			chunk.ID,
			chunk.UserID,
			chunk.Section,
			chunk.BlockType,
			chunk.Category,
			chunk.Summary,
			chunk.Content,
			string(sourcesJSON),
			chunk.Priority,
			chunk.ContainsPersonalData,
			chunk.ChunkType,
			chunk.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *chunkRepository) QueryByUserAndSection(ctx context.Context, userID, section string) ([]models.Chunk, error) {
	query := `
		SELECT id, user_id, section, block_type, category, summary, content,
		       sources, priority, contains_personal_data, chunk_type, created_at
		FROM chunks
		WHERE user_id = $1
	`
	args := []any{userID}

	if section != "" {
		query += " AND section = $2"
		args = append(args, section)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var sourcesJSON string
		var createdAt time.Time

		if err := rows.Scan(
			&chunk.ID,
			&chunk.UserID,
			&chunk.Section,
			&chunk.BlockType,
			&chunk.Category,
			&chunk.Summary,
			&chunk.Content,
			&sourcesJSON,
			&chunk.Priority,
			&chunk.ContainsPersonalData,
			&chunk.ChunkType,
			&createdAt,
		); err != nil {
			return nil, err
		}

		if sourcesJSON != "" && sourcesJSON != "null" {
			if err := json.Unmarshal([]byte(sourcesJSON), &chunk.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources for chunk %s: %w", chunk.ID, err)
			}
		}
		chunk.CreatedAt = createdAt

		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// DeleteBySourceFile removes every chunk of the user whose sources list
// contains exactly sourceFile. This implements the reprocessing policy:
// re-parsing a document replaces its prior chunks instead of accumulating
// duplicates. Returns the number of chunks deleted.
func (r *chunkRepository) DeleteBySourceFile(ctx context.Context, userID, sourceFile string) (int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sources FROM chunks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var toDelete []string
	for rows.Next() {
		var id, sourcesJSON string
		if err := rows.Scan(&id, &sourcesJSON); err != nil {
			return 0, err
		}

		var sources []string
		if sourcesJSON != "" && sourcesJSON != "null" {
			if err := json.Unmarshal([]byte(sourcesJSON), &sources); err != nil {
				continue
			}
		}
		for _, src := range sources {
			if src == sourceFile {
				toDelete = append(toDelete, id)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range toDelete {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE id = $1`, id); err != nil {
			return 0, err
		}
	}

	return len(toDelete), nil
}

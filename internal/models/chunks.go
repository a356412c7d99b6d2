package models

import (
	"time"

	"github.com/campusforms/docufill-api/internal/blocks"
)

// Chunk type discriminators. Semantic blocks come out of LLM formation;
// document content chunks are the naive fixed-window fallback.
const (
	ChunkTypeSemanticBlock   = "semantic_block"
	ChunkTypeDocumentContent = "document_content"
	ChunkTypeRawExtraction   = "raw_extraction"
)

// Chunk is one retrievable unit of stored text with its filtering metadata.
// Semantic blocks and naive fallback windows share this shape; chunks are
// immutable once stored.
type Chunk struct {
	ID                   string           `json:"block_id" db:"id"`
	UserID               string           `json:"user_id" db:"user_id"`
	Section              string           `json:"section" db:"section"`
	BlockType            blocks.BlockType `json:"block_type" db:"block_type"`
	Category             string           `json:"category" db:"category"`
	Summary              string           `json:"summary,omitempty" db:"summary"`
	Content              string           `json:"content" db:"content"`
	Sources              []string         `json:"sources" db:"-"`
	Priority             string           `json:"priority" db:"priority"`
	ContainsPersonalData bool             `json:"contains_personal_data" db:"contains_personal_data"`
	ChunkType            string           `json:"chunk_type" db:"chunk_type"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
}

// RawTextInput is the ephemeral per-document input to semantic formation. It
// is consumed entirely by one formation call and never persisted.
type RawTextInput struct {
	SourceFile string `json:"source_file"`
	FileType   string `json:"file_type"`
	Content    string `json:"content"`
}

// FieldDefinition describes one form field to be auto-filled. Category is a
// free-text ranking hint, not an enum.
type FieldDefinition struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

// Question is one entry of a configured question set (school-specific or
// general). Options apply only to closed-vocabulary types.
type Question struct {
	ID       string   `json:"id,omitempty"`
	Label    string   `json:"label"`
	Section  string   `json:"section,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
	Logic    string   `json:"logic,omitempty"`
}

// FilledQuestion is the per-question output of a batch fill. Filled is true
// iff the answer does not carry the not-found sentinel.
type FilledQuestion struct {
	QuestionID  string   `json:"question_id,omitempty"`
	Label       string   `json:"label"`
	Section     string   `json:"section,omitempty"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Answer      string   `json:"answer"`
	SourceFiles []string `json:"source_files"`
	Filled      bool     `json:"filled"`
	Logic       string   `json:"logic,omitempty"`
}

// FillFieldsResult aggregates a FillMultipleFields batch. The batch always
// returns a complete result set; unresolved fields degrade to the sentinel.
type FillFieldsResult struct {
	Status               string            `json:"status"`
	Message              string            `json:"message,omitempty"`
	TotalFields          int               `json:"total_fields"`
	FoundFields          int               `json:"found_fields"`
	NotFoundFields       int               `json:"not_found_fields"`
	SuccessRate          float64           `json:"success_rate"`
	TotalChunksAvailable int               `json:"total_chunks_available"`
	Results              map[string]string `json:"results"`
}

// FillQuestionsResult aggregates a school or general question batch.
type FillQuestionsResult struct {
	Status          string           `json:"status"`
	UserID          string           `json:"user_id"`
	SchoolID        string           `json:"school_id,omitempty"`
	Message         string           `json:"message,omitempty"`
	TotalQuestions  int              `json:"total_questions"`
	FilledCount     int              `json:"filled_count"`
	RequiredFilled  int              `json:"required_filled"`
	RequiredTotal   int              `json:"required_total"`
	FillPercentage  float64          `json:"fill_percentage"`
	FilledQuestions []FilledQuestion `json:"filled_questions"`
}

// ParseFileResult reports the outcome of processing one uploaded file.
type ParseFileResult struct {
	Status               string  `json:"status"`
	DocumentID           string  `json:"document_id"`
	SourceFile           string  `json:"source_file"`
	StorageKey           string  `json:"storage_key"`
	Section              string  `json:"section"`
	FileType             string  `json:"file_type"`
	ChunksCreated        int     `json:"chunks_created"`
	Chunks               []Chunk `json:"chunks"`
	UsedSemanticChunking bool    `json:"used_semantic_chunking"`
}

// StoredFile describes one uploaded object, as listed from the blob store.
type StoredFile struct {
	Key          string    `json:"key"`
	Filename     string    `json:"filename"`
	Section      string    `json:"section"`
	FileType     string    `json:"file_type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// User is an account row. PasswordHash is a salted sha-256 digest.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UploadResponse is returned after a successful document upload.
type UploadResponse struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	Section     string    `json:"section"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	Message     string    `json:"message"`
}

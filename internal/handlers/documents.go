package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/campusforms/docufill-api/internal/middleware"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/services"
	"github.com/campusforms/docufill-api/internal/storage"
	"github.com/campusforms/docufill-api/internal/utils"
)

const presignedURLExpiry = 15 * time.Minute

type DocumentHandler struct {
	store       storage.Storage
	parser      *services.ParseService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(store storage.Storage, parser *services.ParseService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		store:       store,
		parser:      parser,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Upload accepts a multipart document upload. The "section" form value
// decides where the file lands under the user's prefix; it defaults to
// general.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	// Reject oversized requests before reading the body
	if r.ContentLength > h.maxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError("File size exceeds upload limit"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(w, h.logger, utils.NewBadRequestError("File size exceeds upload limit"))
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	section := r.FormValue("section")
	if section == "" {
		section = "general"
	}

	contentType := determineContentType(header.Filename, header.Header.Get("Content-Type"))
	if !isValidContentType(contentType) {
		respondError(w, h.logger, utils.NewBadRequestError("Only PDF, DOCX, TXT and image files are allowed"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError("File size exceeds upload limit"))
		return
	}
	if len(data) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	key := h.store.ObjectKey(userID, section, filepath.Base(header.Filename))
	if err := h.store.Upload(r.Context(), key, data, contentType); err != nil {
		h.logger.Error("Upload failed", "key", key, "error", err)
		respondError(w, h.logger, utils.NewInternalError("Failed to store file"))
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, models.UploadResponse{
		Key:         key,
		Filename:    header.Filename,
		Section:     section,
		FileSize:    int64(len(data)),
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
		Message:     "File uploaded successfully",
	})
}

// List returns the user's uploaded files with short-lived download URLs.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	files, err := h.store.ListUserFiles(r.Context(), userID)
	if err != nil {
		h.logger.Error("File listing failed", "user_id", userID, "error", err)
		respondError(w, h.logger, utils.NewInternalError("Failed to list files"))
		return
	}

	for i := range files {
		url, err := h.store.PresignedURL(r.Context(), files[i].Key, presignedURLExpiry)
		if err != nil {
			h.logger.Warn("Failed to presign URL", "key", files[i].Key, "error", err)
			continue
		}
		files[i].URL = url
	}
	if files == nil {
		files = []models.StoredFile{}
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// Parse processes every uploaded file of the user into stored chunks.
func (h *DocumentHandler) Parse(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	results, err := h.parser.ParseAllFiles(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	total := 0
	for _, res := range results {
		total += res.ChunksCreated
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"status":         "completed",
		"files":          results,
		"files_total":    len(results),
		"chunks_created": total,
	})
}

func determineContentType(filename, headerContentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}
	return headerContentType
}

func isValidContentType(contentType string) bool {
	validTypes := map[string]bool{
		"application/pdf": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"text/plain":  true,
		"image/jpeg":  true,
		"image/png":   true,
		"image/webp":  true,
		"image/heic":  true,
	}
	return validTypes[contentType]
}

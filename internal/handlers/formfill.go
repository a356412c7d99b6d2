package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campusforms/docufill-api/internal/formfill"
	"github.com/campusforms/docufill-api/internal/middleware"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/utils"
)

type FormFillHandler struct {
	service *formfill.Service
	logger  *utils.Logger
}

func NewFormFillHandler(service *formfill.Service, logger *utils.Logger) *FormFillHandler {
	return &FormFillHandler{service: service, logger: logger}
}

type fillFieldsRequest struct {
	Fields          []models.FieldDefinition `json:"fields"`
	Section         string                   `json:"section"`
	UseOptimization *bool                    `json:"use_optimization"`
}

type fillQuestionsRequest struct {
	UseOptimization *bool `json:"use_optimization"`
}

// FillFields extracts values for an ad-hoc list of form fields.
func (h *FormFillHandler) FillFields(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req fillFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}
	if len(req.Fields) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("At least one field is required"))
		return
	}

	result, err := h.service.FillMultipleFields(r.Context(), userID, req.Fields, req.Section, useOptimization(req.UseOptimization))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// FillSchool fills the configured question set of one school.
func (h *FormFillHandler) FillSchool(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	schoolID := mux.Vars(r)["school_id"]
	if schoolID == "" {
		respondError(w, h.logger, utils.NewBadRequestError("School ID is required"))
		return
	}

	var req fillQuestionsRequest
	if r.Body != nil {
		// Body is optional; decode errors on an empty body are fine.
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.service.FillSchoolQuestions(r.Context(), userID, schoolID, useOptimization(req.UseOptimization))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// FillGeneral fills the whole general application question set.
func (h *FormFillHandler) FillGeneral(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req fillQuestionsRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.service.FillGeneralQuestions(r.Context(), userID, useOptimization(req.UseOptimization))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// Sections lists the sections of the general question set.
func (h *FormFillHandler) Sections(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"sections": h.service.Sections(),
	})
}

// Chunks returns the user's stored chunks, optionally filtered by the
// "section" query parameter.
func (h *FormFillHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	section := r.URL.Query().Get("section")

	chunks := h.service.GetUserChunks(r.Context(), userID, section)
	if chunks == nil {
		chunks = []models.Chunk{}
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"chunks": chunks,
		"count":  len(chunks),
	})
}

// useOptimization defaults to true when the request leaves it unset.
func useOptimization(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

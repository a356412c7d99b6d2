package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campusforms/docufill-api/internal/auth"
	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/utils"
)

type AuthHandler struct {
	service *auth.Service
	logger  *utils.Logger
}

func NewAuthHandler(service *auth.Service, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	user, token, err := h.service.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, authResponse{Token: token, User: user})
}

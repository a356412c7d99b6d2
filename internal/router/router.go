package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campusforms/docufill-api/internal/auth"
	"github.com/campusforms/docufill-api/internal/handlers"
	"github.com/campusforms/docufill-api/internal/middleware"
	"github.com/campusforms/docufill-api/internal/utils"
)

type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	DocumentHandler *handlers.DocumentHandler
	FormFillHandler *handlers.FormFillHandler
	Tokens          *auth.TokenManager
	Logger          *utils.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(deps.Logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Auth endpoints
	api.HandleFunc("/auth/signup", deps.AuthHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", deps.AuthHandler.Login).Methods(http.MethodPost)

	// Everything below requires a bearer token
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(deps.Tokens))

	// Document endpoints
	protected.HandleFunc("/documents/upload", deps.DocumentHandler.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/documents", deps.DocumentHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/documents/parse", deps.DocumentHandler.Parse).Methods(http.MethodPost)

	// Chunk and form-fill endpoints
	protected.HandleFunc("/chunks", deps.FormFillHandler.Chunks).Methods(http.MethodGet)
	protected.HandleFunc("/fill/fields", deps.FormFillHandler.FillFields).Methods(http.MethodPost)
	protected.HandleFunc("/fill/schools/{school_id}", deps.FormFillHandler.FillSchool).Methods(http.MethodPost)
	protected.HandleFunc("/fill/general", deps.FormFillHandler.FillGeneral).Methods(http.MethodPost)
	protected.HandleFunc("/questions/sections", deps.FormFillHandler.Sections).Methods(http.MethodGet)

	return r
}

package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
	"github.com/ewilliams-labs/musicmate/internal/core/services"
)

// Error codes returned in the "code" field of error bodies.
const (
	errCodeNotFound     = "NOT_FOUND"
	errCodeDuplicate    = "DUPLICATE_TRACK"
	errCodeOutOfRange   = "INDEX_OUT_OF_RANGE"
	errCodeInvalid      = "INVALID_ARGUMENT"
	errCodeSampleMode   = "SAMPLE_MODE"
	errCodeTurnInFlight = "TURN_IN_FLIGHT"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator // Dependency on the Core Service
	store  *services.Store
	router *http.ServeMux // Standard library router
	logger *zap.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:    svc,
		store:  svc.Store(),
		router: http.NewServeMux(),
		logger: logger,
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Conversation
	h.router.HandleFunc("POST /chat", h.Chat)
	h.router.HandleFunc("GET /turns", h.ListTurns)
	// Playlist Management
	h.router.HandleFunc("GET /playlists", h.ListPlaylists)
	h.router.HandleFunc("POST /playlists", h.CreatePlaylist)
	h.router.HandleFunc("GET /playlists/{id}", h.GetPlaylist)
	h.router.HandleFunc("DELETE /playlists/{id}", h.DeletePlaylist)
	h.router.HandleFunc("POST /playlists/{id}/tracks", h.AddTrack)
	h.router.HandleFunc("DELETE /playlists/{id}/tracks/{index}", h.RemoveTrack)
	// Demonstration data
	h.router.HandleFunc("GET /sample-mode", h.GetSampleMode)
	h.router.HandleFunc("PUT /sample-mode", h.SetSampleMode)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "MusicMate is live 🎶"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps core errors to status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrDuplicateTrack):
		writeErrorWithCode(w, http.StatusConflict, err.Error(), errCodeDuplicate)
	case errors.Is(err, domain.ErrIndexOutOfRange):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeOutOfRange)
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, services.ErrEmptyUtterance):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalid)
	case errors.Is(err, services.ErrSampleMode):
		writeErrorWithCode(w, http.StatusConflict, err.Error(), errCodeSampleMode)
	case errors.Is(err, services.ErrTurnInFlight):
		writeErrorWithCode(w, http.StatusTooManyRequests, err.Error(), errCodeTurnInFlight)
	default:
		h.logger.Error("rest: unexpected service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
)

// addTrackRequest defines what the client sends us
type addTrackRequest struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Genre       string `json:"genre"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// AddTrack handles POST /playlists/{id}/tracks
func (h *Handler) AddTrack(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	playlistID := r.PathValue("id")

	// 1. Decode the Request Body
	var req addTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Validate Input
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Artist) == "" {
		writeError(w, http.StatusBadRequest, "title and artist are required")
		return
	}

	// 3. Call the Store
	playlist, err := h.store.AddTrackManually(r.Context(), playlistID, domain.Track{
		Title:       req.Title,
		Artist:      req.Artist,
		Genre:       req.Genre,
		Source:      req.Source,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// 4. Return the Response
	writeJSON(w, http.StatusCreated, playlist)
}

// RemoveTrack handles DELETE /playlists/{id}/tracks/{index}. The index is
// the 0-based display position.
func (h *Handler) RemoveTrack(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	playlist, err := h.store.RemoveTrackManually(r.Context(), r.PathValue("id"), index)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

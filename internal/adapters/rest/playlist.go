package rest

import (
	"encoding/json"
	"net/http"
)

type createPlaylistRequest struct {
	Name string `json:"name"`
}

// ListPlaylists handles GET /playlists
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Playlists())
}

// CreatePlaylist handles POST /playlists
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	// 1. Decode Request
	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Call Service
	playlist, err := h.store.CreatePlaylist(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// 3. Respond
	w.Header().Set("Location", "/playlists/"+playlist.ID)
	writeJSON(w, http.StatusCreated, playlist)
}

// GetPlaylist handles GET /playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.store.Playlist(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

// DeletePlaylist handles DELETE /playlists/{id}
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePlaylist(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

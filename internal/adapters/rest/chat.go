package rest

import (
	"encoding/json"
	"net/http"
)

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /chat. A failed agent call still answers 200: the
// reply carries the assistant turn and the error text.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.svc.Send(r.Context(), req.Message)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// ListTurns handles GET /turns
func (h *Handler) ListTurns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Turns())
}

type sampleModeBody struct {
	Enabled bool `json:"enabled"`
}

// GetSampleMode handles GET /sample-mode
func (h *Handler) GetSampleMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sampleModeBody{Enabled: h.store.SampleMode()})
}

// SetSampleMode handles PUT /sample-mode
func (h *Handler) SetSampleMode(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req sampleModeBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.store.SetSampleMode(req.Enabled)
	writeJSON(w, http.StatusOK, sampleModeBody{Enabled: h.store.SampleMode()})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/davronx1/leadgate/internal/handoff"
)

type HandoffHandler struct {
	store handoff.Store
}

func NewHandoffHandler(store handoff.Store) *HandoffHandler {
	return &HandoffHandler{store: store}
}

type storeHandoffRequest struct {
	SessionKey string          `json:"session_key"`
	Form       json.RawMessage `json:"form"`
}

// Handle parks an in-progress web submission under the session key so the
// bot can complete it when the same visitor opens a chat.
func (h *HandoffHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req storeHandoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid JSON"})
		return
	}
	if req.SessionKey == "" || len(req.Form) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "session_key and form are required"})
		return
	}

	if err := h.store.Put(r.Context(), req.SessionKey, req.Form); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Failed to store submission"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

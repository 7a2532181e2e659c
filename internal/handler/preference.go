package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/store"
)

// PreferenceHandler serves the signed-in user's own preferences.
type PreferenceHandler struct {
	prefStore *store.PreferenceStore
	logger    *slog.Logger
}

func NewPreferenceHandler(ps *store.PreferenceStore, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefStore: ps, logger: logger}
}

type preferencesResponse struct {
	DarkMode bool `json:"dark_mode"`
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	dark, err := h.prefStore.DarkMode(r.Context(), userID)
	if err != nil {
		h.logger.Error("get dark mode", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{DarkMode: dark})
}

func (h *PreferenceHandler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.prefStore.SetDarkMode(r.Context(), userID, *req.Enabled); err != nil {
		h.logger.Error("set dark mode", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{DarkMode: *req.Enabled})
}

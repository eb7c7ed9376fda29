package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"homeboard/internal/auth"
	"homeboard/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, logger: logger}
}

// Get returns the home's settings map.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	all, err := h.settings.All(homeID)
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת ההגדרות נכשלה")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// Update writes the submitted keys. Admin only; unknown keys are stored
// as-is so the client can keep its own preferences here.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}

	for key, value := range req {
		if err := h.settings.Set(homeID, key, value); err != nil {
			h.logger.Error("set setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "שמירת ההגדרות נכשלה")
			return
		}
	}

	all, err := h.settings.All(homeID)
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת ההגדרות נכשלה")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"homeboard/internal/auth"
	"homeboard/internal/backup"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backups: bs, logger: logger}
}

// List returns the home's recent backups, newest first.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	list, err := h.backups.ListByHome(homeID, 20)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הגיבויים נכשלה")
		return
	}
	if list == nil {
		list = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": h.manager.Enabled(),
		"backups": list,
	})
}

// Run starts an immediate backup. Admin only.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	if !h.manager.Enabled() {
		writeError(w, http.StatusConflict, "גיבויים לא מוגדרים בשרת הזה")
		return
	}

	id, err := h.manager.RunNow(r.Context(), homeID)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "הגיבוי נכשל")
		return
	}

	record, err := h.backups.GetByID(id)
	if err != nil || record == nil {
		writeError(w, http.StatusInternalServerError, "הגיבוי נכשל")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Download streams the encrypted backup object. Admin only.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "מזהה לא תקין")
		return
	}

	body, size, err := h.manager.Download(r.Context(), id, homeID)
	if err != nil {
		h.logger.Error("download backup", "error", err)
		writeError(w, http.StatusNotFound, "הגיבוי לא נמצא")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=backup-%d.db.enc", id))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream backup", "error", err)
	}
}

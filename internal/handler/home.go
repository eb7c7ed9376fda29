package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"homeboard/internal/auth"
	"homeboard/internal/store"
	ws "homeboard/internal/websocket"
)

type HomeHandler struct {
	homes  *store.HomeStore
	users  *store.UserStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewHomeHandler(hs *store.HomeStore, us *store.UserStore, hub *ws.Hub, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{homes: hs, users: us, hub: hub, logger: logger}
}

// Get returns the caller's home with its member list.
func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	home, err := h.homes.GetByID(ac.HomeID)
	if err != nil || home == nil {
		h.logger.Error("get home", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הבית נכשלה")
		return
	}
	members, err := h.homes.ListMembers(ac.HomeID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הבית נכשלה")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"home":    home,
		"members": members,
	})
}

type renameRequest struct {
	Name string `json:"name"`
}

// Rename changes the home's name. Admin only.
func (h *HomeHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "צריך שם לבית")
		return
	}

	home, err := h.homes.UpdateName(ac.HomeID, req.Name)
	if err != nil {
		h.logger.Error("rename home", "error", err)
		writeError(w, http.StatusInternalServerError, "עדכון הבית נכשל")
		return
	}

	h.hub.Broadcast(ac.HomeID, ws.NewMessage("home", "renamed", ac.HomeID, nil))
	writeJSON(w, http.StatusOK, home)
}

// RemoveMember removes a member from the home. Admin only; the admin cannot
// remove themselves.
func (h *HomeHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "מזהה לא תקין")
		return
	}
	if userID == ac.UserID {
		writeError(w, http.StatusBadRequest, "מנהל הבית לא יכול להסיר את עצמו")
		return
	}

	member, err := h.homes.GetMember(ac.HomeID, userID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "הסרת החבר נכשלה")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "החבר לא נמצא")
		return
	}

	if err := h.homes.RemoveMember(ac.HomeID, userID); err != nil {
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "הסרת החבר נכשלה")
		return
	}

	h.hub.Broadcast(ac.HomeID, ws.NewMessage("home_member", "removed", userID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type profileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile renames the calling member.
func (h *HomeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "צריך שם")
		return
	}

	user, err := h.users.UpdateName(ac.UserID, req.Name)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "עדכון הפרופיל נכשל")
		return
	}

	h.hub.Broadcast(ac.HomeID, ws.NewMessage("home_member", "updated", ac.UserID, nil))
	writeJSON(w, http.StatusOK, user)
}

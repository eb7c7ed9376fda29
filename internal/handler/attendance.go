package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"homeboard/internal/attendance"
	"homeboard/internal/auth"
	"homeboard/internal/calendar"
	"homeboard/internal/model"
	"homeboard/internal/store"
	ws "homeboard/internal/websocket"
)

type AttendanceHandler struct {
	records *store.AttendanceStore
	homes   *store.HomeStore
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewAttendanceHandler(as *store.AttendanceStore, hs *store.HomeStore, hub *ws.Hub, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{records: as, homes: hs, hub: hub, logger: logger}
}

// Week returns the member × day grid for one week. The offset query
// parameter counts weeks from the current one (0 = this week, 1 = next).
func (h *AttendanceHandler) Week(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "שבוע לא תקין")
			return
		}
		offset = n
	}

	weekStart := calendar.WeekStart(time.Now()).AddDate(0, 0, 7*offset)
	weekID := calendar.ISOWeekID(weekStart)
	dates := calendar.WeekDates(weekStart)

	members, err := h.homes.ListMembers(ac.HomeID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הנוכחות נכשלה")
		return
	}

	week, err := h.records.GetWeek(ac.HomeID, weekID)
	if err != nil {
		h.logger.Error("get attendance week", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הנוכחות נכשלה")
		return
	}

	dateKeys := make([]string, 0, len(dates))
	for _, d := range dates {
		dateKeys = append(dateKeys, calendar.DateKey(d))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"week_id":    weekID,
		"date_range": calendar.WeekLabel(weekStart),
		"dates":      dateKeys,
		"rows":       attendance.WeeklyGrid(dates, members, week, ac.UserID),
	})
}

type attendanceRequest struct {
	UserID *int64 `json:"user_id"`
	Coming bool   `json:"coming"`
	Guests int    `json:"guests"`
	Note   string `json:"note"`
}

// Set writes the caller's own record for one day. Writing another member's
// cell is refused.
func (h *AttendanceHandler) Set(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	weekID := r.PathValue("week")
	dateKey := r.PathValue("date")
	if !validDateInWeek(weekID, dateKey) {
		writeError(w, http.StatusBadRequest, "תאריך לא תקין")
		return
	}

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}
	if req.UserID != nil && *req.UserID != ac.UserID {
		writeError(w, http.StatusForbidden, "אפשר לעדכן רק את הנוכחות שלך")
		return
	}
	if req.Guests < 0 {
		writeError(w, http.StatusBadRequest, "מספר אורחים לא תקין")
		return
	}

	rec := model.AttendanceRecord{Coming: req.Coming, Guests: req.Guests, Note: req.Note}
	if err := h.records.SetOwn(ac.HomeID, weekID, dateKey, ac.UserID, rec); err != nil {
		h.logger.Error("set attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "עדכון הנוכחות נכשל")
		return
	}

	h.hub.Broadcast(ac.HomeID, ws.NewMessage("attendance", "updated", ac.UserID, map[string]any{
		"week_id":  weekID,
		"date_key": dateKey,
	}))
	writeJSON(w, http.StatusOK, rec)
}

// Coming lists the members marked as coming on one day, in member-list
// order.
func (h *AttendanceHandler) Coming(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	weekID := r.PathValue("week")
	dateKey := r.PathValue("date")
	if !validDateInWeek(weekID, dateKey) {
		writeError(w, http.StatusBadRequest, "תאריך לא תקין")
		return
	}

	members, err := h.homes.ListMembers(ac.HomeID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הנוכחות נכשלה")
		return
	}
	week, err := h.records.GetWeek(ac.HomeID, weekID)
	if err != nil {
		h.logger.Error("get attendance week", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הנוכחות נכשלה")
		return
	}

	coming := attendance.WhoIsComing(members, week, dateKey)
	if coming == nil {
		coming = []model.MemberProfile{}
	}

	total := len(coming)
	for _, m := range coming {
		total += week.Get(dateKey, m.UserID).Guests
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date_key": dateKey,
		"members":  coming,
		"total":    total,
	})
}

// validDateInWeek checks the date key parses and falls inside the named
// week.
func validDateInWeek(weekID, dateKey string) bool {
	d, err := time.ParseInLocation("2006-01-02", dateKey, time.Local)
	if err != nil {
		return false
	}
	return calendar.ISOWeekID(calendar.WeekStart(d)) == weekID
}

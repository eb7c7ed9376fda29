package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/grocery"
	"homeboard/internal/model"
	"homeboard/internal/store"
	ws "homeboard/internal/websocket"
)

type GroceryHandler struct {
	groceries *store.GroceryStore
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, hub *ws.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceries: gs, hub: hub, logger: logger}
}

// List returns the home's list grouped into week sections, newest week
// first.
func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	items, err := h.groceries.ListByHome(homeID)
	if err != nil {
		h.logger.Error("list groceries", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הרשימה נכשלה")
		return
	}

	groups := grocery.GroupByWeek(items, time.Now())
	if groups == nil {
		groups = []grocery.WeekGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeks": groups})
}

type groceryItemRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

// Add creates an item or merges it into an existing unchecked item with the
// same name.
func (h *GroceryHandler) Add(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req groceryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "צריך שם לפריט")
		return
	}

	item, merged, err := h.groceries.AddItem(ac.HomeID, req.Name, req.Amount, req.Note, ac.UserID)
	if err != nil {
		h.logger.Error("add grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "הוספת הפריט נכשלה")
		return
	}

	action := "created"
	if merged {
		action = "merged"
	}
	h.hub.Broadcast(ac.HomeID, ws.NewMessage("grocery_item", action, item.ID, nil))

	status := http.StatusCreated
	if merged {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"item": item, "merged": merged})
}

// Toggle flips an item's checked state.
func (h *GroceryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	item, ok := h.ownedItem(w, r, homeID)
	if !ok {
		return
	}

	updated, err := h.groceries.ToggleChecked(item.ID)
	if err != nil || updated == nil {
		h.logger.Error("toggle grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "עדכון הפריט נכשל")
		return
	}

	h.hub.Broadcast(homeID, ws.NewMessage("grocery_item", "toggled", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// SetAmount overwrites an item's amount.
func (h *GroceryHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	item, ok := h.ownedItem(w, r, homeID)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}

	updated, err := h.groceries.SetAmount(item.ID, req.Amount)
	if err != nil || updated == nil {
		h.logger.Error("set grocery amount", "error", err)
		writeError(w, http.StatusInternalServerError, "עדכון הכמות נכשל")
		return
	}

	h.hub.Broadcast(homeID, ws.NewMessage("grocery_item", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Increment raises the item's numeric amount by one, normalizing any sum
// expression in the process.
func (h *GroceryHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjustAmount(w, r, +1)
}

// Decrement lowers the amount by one but never below one.
func (h *GroceryHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjustAmount(w, r, -1)
}

func (h *GroceryHandler) adjustAmount(w http.ResponseWriter, r *http.Request, delta float64) {
	homeID := auth.HomeID(r.Context())

	item, ok := h.ownedItem(w, r, homeID)
	if !ok {
		return
	}

	value := grocery.ParseAmount(item.Amount) + delta
	if value < 1 {
		value = 1
	}

	updated, err := h.groceries.SetAmount(item.ID, grocery.FormatNumber(value))
	if err != nil || updated == nil {
		h.logger.Error("adjust grocery amount", "error", err)
		writeError(w, http.StatusInternalServerError, "עדכון הכמות נכשל")
		return
	}

	h.hub.Broadcast(homeID, ws.NewMessage("grocery_item", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a single item.
func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	item, ok := h.ownedItem(w, r, homeID)
	if !ok {
		return
	}

	if err := h.groceries.Delete(item.ID); err != nil {
		h.logger.Error("delete grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "מחיקת הפריט נכשלה")
		return
	}

	h.hub.Broadcast(homeID, ws.NewMessage("grocery_item", "deleted", item.ID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteChecked removes every checked item in the home.
func (h *GroceryHandler) DeleteChecked(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	count, err := h.groceries.DeleteChecked(homeID)
	if err != nil {
		h.logger.Error("delete checked items", "error", err)
		writeError(w, http.StatusInternalServerError, "מחיקת הפריטים נכשלה")
		return
	}

	h.hub.Broadcast(homeID, ws.NewMessage("grocery_list", "checked_cleared", 0, map[string]any{"count": count}))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

// ClearAll empties the home's list.
func (h *GroceryHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	count, err := h.groceries.ClearAll(homeID)
	if err != nil {
		h.logger.Error("clear grocery list", "error", err)
		writeError(w, http.StatusInternalServerError, "ניקוי הרשימה נכשל")
		return
	}

	h.hub.Broadcast(homeID, ws.NewMessage("grocery_list", "cleared", 0, map[string]any{"count": count}))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

// Suggestions returns up to five name completions for the q parameter,
// drawn from every name the home has ever used.
func (h *GroceryHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	homeID := auth.HomeID(r.Context())

	names, err := h.groceries.Names(homeID)
	if err != nil {
		h.logger.Error("list grocery names", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת ההשלמות נכשלה")
		return
	}

	matches := grocery.Suggestions(names, r.URL.Query().Get("q"))
	if matches == nil {
		matches = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": matches})
}

// ownedItem loads the item from the id path param and checks it belongs to
// the caller's home. Writes the error response itself on failure.
func (h *GroceryHandler) ownedItem(w http.ResponseWriter, r *http.Request, homeID int64) (*model.GroceryItem, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "מזהה לא תקין")
		return nil, false
	}

	item, err := h.groceries.GetByID(id)
	if err != nil {
		h.logger.Error("get grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "טעינת הפריט נכשלה")
		return nil, false
	}
	if item == nil || item.HomeID != homeID {
		writeError(w, http.StatusNotFound, "הפריט לא נמצא")
		return nil, false
	}
	return item, true
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/email"
	"homeboard/internal/middleware"
	"homeboard/internal/store"
)

type AuthHandler struct {
	users    *store.UserStore
	homes    *store.HomeStore
	sessions *store.SessionStore
	codes    *store.LoginCodeStore
	email    *email.Client
	secure   bool
	logger   *slog.Logger
}

func NewAuthHandler(us *store.UserStore, hs *store.HomeStore, ss *store.SessionStore, cs *store.LoginCodeStore, ec *email.Client, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    us,
		homes:    hs,
		sessions: ss,
		codes:    cs,
		email:    ec,
		secure:   secureCookies,
		logger:   logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	HomeName string `json:"home_name"`
}

// Register creates a user with a new home and emails a login code. The
// account is usable only after the code is verified.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.HomeName = strings.TrimSpace(req.HomeName)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "כתובת אימייל לא תקינה")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "צריך שם")
		return
	}
	if req.HomeName == "" {
		writeError(w, http.StatusBadRequest, "צריך שם לבית")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "כתובת האימייל כבר רשומה")
		return
	}

	user, err := h.users.Create(req.Email, req.Name)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	home, err := h.homes.Create(req.HomeName)
	if err != nil {
		h.logger.Error("create home", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	if _, err := h.homes.AddMember(home.ID, user.ID, "admin"); err != nil {
		h.logger.Error("add member", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	if err := h.homes.SetAdmin(home.ID, user.ID); err != nil {
		h.logger.Error("set admin", "error", err)
	}

	h.sendCode(w, r, req.Email, "register", nil, home.Name)
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login emails a login code to an existing user. The response is the same
// whether the address is registered or not.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}

	req.Email = normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "כתובת אימייל לא תקינה")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	if user == nil {
		// Do not reveal which addresses exist
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
		return
	}

	h.sendCode(w, r, req.Email, "login", nil, "")
}

func (h *AuthHandler) sendCode(w http.ResponseWriter, r *http.Request, toEmail, purpose string, homeID *int64, homeName string) {
	code, _, err := h.codes.Create(toEmail, purpose, homeID)
	if err != nil {
		h.logger.Error("create login code", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}

	if h.email.Configured() {
		if err := h.email.SendLoginCode(r.Context(), toEmail, code, purpose, homeName); err != nil {
			h.logger.Error("send login code", "error", err)
			writeError(w, http.StatusInternalServerError, "שליחת הקוד נכשלה, נסו שוב")
			return
		}
	} else {
		// Dev mode: no mail provider configured, surface the code in the log
		h.logger.Info("login code issued", "email", toEmail, "code", code, "purpose", purpose)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}

// Verify checks a 6-digit code and opens a session. Invite codes also join
// the new member to the inviting home, creating the user if needed.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "צריך אימייל וקוד")
		return
	}

	lc, err := h.codes.Verify(req.Email, req.Code)
	if err != nil {
		h.logger.Error("verify code", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	if lc == nil {
		writeError(w, http.StatusUnauthorized, "קוד שגוי או שפג תוקפו")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}

	if lc.Purpose == "invite" && lc.HomeID != nil {
		if user == nil {
			name := strings.TrimSpace(req.Name)
			if name == "" {
				name = req.Email
			}
			user, err = h.users.Create(req.Email, name)
			if err != nil {
				h.logger.Error("create invited user", "error", err)
				writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
				return
			}
		}
		member, err := h.homes.GetMemberByUser(user.ID)
		if err != nil {
			h.logger.Error("lookup membership", "error", err)
			writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
			return
		}
		if member == nil {
			if _, err := h.homes.AddMember(*lc.HomeID, user.ID, "member"); err != nil {
				h.logger.Error("join home", "error", err)
				writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
				return
			}
		} else if member.HomeID != *lc.HomeID {
			writeError(w, http.StatusConflict, "אפשר להיות חברים רק בבית אחד")
			return
		}
	}

	if user == nil {
		writeError(w, http.StatusUnauthorized, "קוד שגוי או שפג תוקפו")
		return
	}

	member, err := h.homes.GetMemberByUser(user.ID)
	if err != nil || member == nil {
		h.logger.Error("lookup membership", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}

	sess, err := h.sessions.Create(user.ID, member.HomeID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"home_id": member.HomeID,
		"role":    member.Role,
	})
}

// Logout deletes the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the authenticated member's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "נדרשת התחברות")
		return
	}

	user, err := h.users.GetByID(ac.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"home_id": ac.HomeID,
		"role":    ac.Role,
	})
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Invite sends an invite code for the admin's home.
func (h *AuthHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "בקשה לא תקינה")
		return
	}
	req.Email = normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "כתובת אימייל לא תקינה")
		return
	}

	home, err := h.homes.GetByID(ac.HomeID)
	if err != nil || home == nil {
		writeError(w, http.StatusInternalServerError, "משהו השתבש, נסו שוב")
		return
	}

	h.sendCode(w, r, req.Email, "invite", &ac.HomeID, home.Name)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeboard/internal/email"
	"homeboard/internal/middleware"
	"homeboard/internal/store"
)

func newAuthHandler(env *testEnv) *AuthHandler {
	return NewAuthHandler(
		env.stores.usersStore,
		env.stores.homes,
		store.NewSessionStore(env.db),
		store.NewLoginCodeStore(env.db),
		email.NewClient("", "", ""), // unconfigured: codes go to the log
		false,
		slog.Default(),
	)
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := httptest.NewRequest("POST", "/api/auth", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func TestRegisterCreatesUserHomeAndAdmin(t *testing.T) {
	env := setupEnv(t, 0)
	h := newAuthHandler(env)

	rec := postJSON(t, h.Register, map[string]string{
		"email":     "Rina@Example.com",
		"name":      "רינה",
		"home_name": "בית לוי",
	})
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	user, err := env.stores.usersStore.GetByEmail("rina@example.com")
	if err != nil || user == nil {
		t.Fatalf("user not created (email should be lowercased): %v", err)
	}
	member, _ := env.stores.homes.GetMemberByUser(user.ID)
	if member == nil || member.Role != "admin" {
		t.Fatalf("member = %+v, want admin membership", member)
	}
	home, _ := env.stores.homes.GetByID(member.HomeID)
	if home.Name != "בית לוי" {
		t.Errorf("home name = %q", home.Name)
	}
	if home.AdminID == nil || *home.AdminID != user.ID {
		t.Errorf("admin_id = %v, want %d", home.AdminID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupEnv(t, 1)
	h := newAuthHandler(env)

	rec := postJSON(t, h.Register, map[string]string{
		"email":     env.users[0].Email,
		"name":      "כפול",
		"home_name": "עוד בית",
	})
	if rec.Code != 409 {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestLoginUnknownEmailDoesNotReveal(t *testing.T) {
	env := setupEnv(t, 0)
	h := newAuthHandler(env)

	rec := postJSON(t, h.Login, map[string]string{"email": "nobody@example.com"})
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200 for unknown address", rec.Code)
	}
}

func TestVerifyOpensSession(t *testing.T) {
	env := setupEnv(t, 1)
	h := newAuthHandler(env)

	code, _, err := h.codes.Create(env.users[0].Email, "login", nil)
	if err != nil {
		t.Fatalf("create code: %v", err)
	}

	rec := postJSON(t, h.Verify, map[string]string{"email": env.users[0].Email, "code": code})
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}

	sess, err := h.sessions.GetByToken(sessionCookie.Value)
	if err != nil || sess == nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.UserID != env.users[0].ID || sess.HomeID != env.home.ID {
		t.Errorf("session = %+v", sess)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	env := setupEnv(t, 1)
	h := newAuthHandler(env)

	code, _, _ := h.codes.Create(env.users[0].Email, "login", nil)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	rec := postJSON(t, h.Verify, map[string]string{"email": env.users[0].Email, "code": wrong})
	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestVerifyInviteJoinsHome(t *testing.T) {
	env := setupEnv(t, 1)
	h := newAuthHandler(env)

	code, _, err := h.codes.Create("guest@example.com", "invite", &env.home.ID)
	if err != nil {
		t.Fatalf("create invite code: %v", err)
	}

	rec := postJSON(t, h.Verify, map[string]string{
		"email": "guest@example.com",
		"code":  code,
		"name":  "אורח",
	})
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	user, _ := env.stores.usersStore.GetByEmail("guest@example.com")
	if user == nil || user.Name != "אורח" {
		t.Fatalf("invited user = %+v", user)
	}
	member, _ := env.stores.homes.GetMemberByUser(user.ID)
	if member == nil || member.HomeID != env.home.ID || member.Role != "member" {
		t.Errorf("membership = %+v", member)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := setupEnv(t, 1)
	h := newAuthHandler(env)

	sess, err := h.sessions.Create(env.users[0].ID, env.home.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := httptest.NewRequest("POST", "/api/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	gone, _ := h.sessions.GetByToken(sess.Token)
	if gone != nil {
		t.Error("session should be deleted")
	}
}

package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeboard/internal/auth"
	"homeboard/internal/database"
	"homeboard/internal/model"
	"homeboard/internal/store"
	ws "homeboard/internal/websocket"
)

type testEnv struct {
	db      *sql.DB
	hub     *ws.Hub
	home    *model.Home
	users   []*model.User
	stores  struct {
		groceries  *store.GroceryStore
		attendance *store.AttendanceStore
		homes      *store.HomeStore
		usersStore *store.UserStore
	}
}

func setupEnv(t *testing.T, memberCount int) *testEnv {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{db: db, hub: ws.NewHub(slog.Default())}
	env.stores.groceries = store.NewGroceryStore(db)
	env.stores.attendance = store.NewAttendanceStore(db)
	env.stores.homes = store.NewHomeStore(db)
	env.stores.usersStore = store.NewUserStore(db)

	env.home, err = env.stores.homes.Create("בית")
	if err != nil {
		t.Fatalf("create home: %v", err)
	}

	emails := []string{"dana@example.com", "yoni@example.com", "noa@example.com"}
	names := []string{"דנה", "יוני", "נועה"}
	for i := 0; i < memberCount; i++ {
		u, err := env.stores.usersStore.Create(emails[i], names[i])
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		role := "member"
		if i == 0 {
			role = "admin"
		}
		if _, err := env.stores.homes.AddMember(env.home.ID, u.ID, role); err != nil {
			t.Fatalf("add member: %v", err)
		}
		env.users = append(env.users, u)
	}
	return env
}

// request builds an authenticated request for the given member index.
func (e *testEnv) request(t *testing.T, method, target string, body any, memberIdx int) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, target, reader)
	role := "member"
	if memberIdx == 0 {
		role = "admin"
	}
	ctx := auth.WithAuth(r.Context(), auth.AuthContext{
		UserID: e.users[memberIdx].ID,
		HomeID: e.home.ID,
		Role:   role,
	})
	return r.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

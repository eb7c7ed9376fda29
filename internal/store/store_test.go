package store

import (
	"database/sql"
	"testing"

	"homeboard/internal/database"
	"homeboard/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHome creates a home with n members and returns the home and the
// members' user records in member-list order.
func seedHome(t *testing.T, db *sql.DB, n int) (*model.Home, []*model.User) {
	t.Helper()
	hs := NewHomeStore(db)
	us := NewUserStore(db)

	home, err := hs.Create("בית")
	if err != nil {
		t.Fatalf("create home: %v", err)
	}

	emails := []string{"dana@example.com", "yoni@example.com", "noa@example.com", "omer@example.com"}
	names := []string{"דנה", "יוני", "נועה", "עומר"}

	var users []*model.User
	for i := 0; i < n; i++ {
		u, err := us.Create(emails[i], names[i])
		if err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
		role := "member"
		if i == 0 {
			role = "admin"
		}
		if _, err := hs.AddMember(home.ID, u.ID, role); err != nil {
			t.Fatalf("add member %d: %v", i, err)
		}
		users = append(users, u)
	}
	if n > 0 {
		if err := hs.SetAdmin(home.ID, users[0].ID); err != nil {
			t.Fatalf("set admin: %v", err)
		}
	}
	return home, users
}

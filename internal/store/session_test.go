package store

import "testing"

func TestSessionCreate(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	ss := NewSessionStore(db)

	sess, err := ss.Create(users[0].ID, home.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.UserID != users[0].ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, users[0].ID)
	}
	if sess.HomeID != home.ID {
		t.Errorf("home_id = %d, want %d", sess.HomeID, home.ID)
	}
}

func TestSessionGetByToken(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	ss := NewSessionStore(db)

	created, _ := ss.Create(users[0].ID, home.ID)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil || sess.ID != created.ID {
		t.Fatalf("sess = %+v, want id %d", sess, created.ID)
	}

	sess, err = ss.GetByToken("nope")
	if err != nil {
		t.Fatalf("get unknown token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	ss := NewSessionStore(db)

	created, _ := ss.Create(users[0].ID, home.ID)
	if err := ss.DeleteByToken(created.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sess, _ := ss.GetByToken(created.Token)
	if sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionTokensUnique(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	ss := NewSessionStore(db)

	a, _ := ss.Create(users[0].ID, home.ID)
	b, _ := ss.Create(users[0].ID, home.ID)
	if a.Token == b.Token {
		t.Error("two sessions share a token")
	}
}

package store

import "testing"

func TestHomeCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHomeStore(db)

	home, err := hs.Create("בית כהן")
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	if home.Name != "בית כהן" {
		t.Errorf("name = %q", home.Name)
	}
	if home.AdminID != nil {
		t.Error("new home should have no admin yet")
	}

	got, err := hs.GetByID(home.ID)
	if err != nil {
		t.Fatalf("get home: %v", err)
	}
	if got == nil || got.ID != home.ID {
		t.Fatalf("got = %+v", got)
	}
}

func TestHomeGetMissing(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHomeStore(db)

	home, err := hs.GetByID(404)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if home != nil {
		t.Error("expected nil for missing home")
	}
}

func TestOneHomePerUser(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHomeStore(db)
	us := NewUserStore(db)

	h1, _ := hs.Create("בית א")
	h2, _ := hs.Create("בית ב")
	u, _ := us.Create("dana@example.com", "דנה")

	if _, err := hs.AddMember(h1.ID, u.ID, "admin"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := hs.AddMember(h2.ID, u.ID, "member"); err == nil {
		t.Error("expected second join to fail: one home per user")
	}
}

func TestListMembersOrder(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 3)
	hs := NewHomeStore(db)

	members, err := hs.ListMembers(home.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}
	for i, m := range members {
		if m.UserID != users[i].ID {
			t.Errorf("members[%d].UserID = %d, want %d", i, m.UserID, users[i].ID)
		}
	}
	if members[0].Role != "admin" {
		t.Errorf("first member role = %q, want admin", members[0].Role)
	}
}

func TestRemoveMemberAllowsRejoin(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHomeStore(db)
	us := NewUserStore(db)

	h1, _ := hs.Create("בית א")
	h2, _ := hs.Create("בית ב")
	u, _ := us.Create("dana@example.com", "דנה")

	hs.AddMember(h1.ID, u.ID, "member")
	if err := hs.RemoveMember(h1.ID, u.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if _, err := hs.AddMember(h2.ID, u.ID, "member"); err != nil {
		t.Errorf("rejoin after leave: %v", err)
	}
}

func TestGetMemberByUser(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	hs := NewHomeStore(db)

	m, err := hs.GetMemberByUser(users[0].ID)
	if err != nil {
		t.Fatalf("get member by user: %v", err)
	}
	if m == nil || m.HomeID != home.ID {
		t.Fatalf("member = %+v, want home %d", m, home.ID)
	}

	m, err = hs.GetMemberByUser(999)
	if err != nil {
		t.Fatalf("get missing member: %v", err)
	}
	if m != nil {
		t.Error("expected nil for non-member")
	}
}

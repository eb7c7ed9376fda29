package store

import (
	"testing"

	"homeboard/internal/model"
)

func TestSetOwnAndGetWeek(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 2)
	as := NewAttendanceStore(db)

	rec := model.AttendanceRecord{Coming: true, Guests: 2, Note: "מגיעים מאוחר"}
	if err := as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID, rec); err != nil {
		t.Fatalf("set own: %v", err)
	}

	week, err := as.GetWeek(home.ID, "2025-W28")
	if err != nil {
		t.Fatalf("get week: %v", err)
	}
	got := week.Get("2025-07-07", users[0].ID)
	if !got.Coming || got.Guests != 2 || got.Note != "מגיעים מאוחר" {
		t.Errorf("record = %+v, want stored record", got)
	}
}

func TestGetWeekEmptyDefault(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	as := NewAttendanceStore(db)

	week, err := as.GetWeek(home.ID, "2025-W30")
	if err != nil {
		t.Fatalf("get week: %v", err)
	}
	if week.Days == nil {
		t.Fatal("Days map must be non-nil for an empty week")
	}
	got := week.Get("2025-07-20", users[0].ID)
	if got.Coming || got.Guests != 0 || got.Note != "" {
		t.Errorf("default record = %+v, want zero value", got)
	}
}

func TestSetOwnDoesNotDisturbOthers(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 2)
	as := NewAttendanceStore(db)

	as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID, model.AttendanceRecord{Coming: true})
	as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[1].ID, model.AttendanceRecord{Coming: true, Guests: 1})
	as.SetOwn(home.ID, "2025-W28", "2025-07-08", users[0].ID, model.AttendanceRecord{Note: "אולי"})

	// Overwrite one cell only.
	if err := as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID, model.AttendanceRecord{Coming: false}); err != nil {
		t.Fatalf("set own: %v", err)
	}

	week, _ := as.GetWeek(home.ID, "2025-W28")
	if week.Get("2025-07-07", users[0].ID).Coming {
		t.Error("own cell not overwritten")
	}
	other := week.Get("2025-07-07", users[1].ID)
	if !other.Coming || other.Guests != 1 {
		t.Errorf("other member's cell disturbed: %+v", other)
	}
	if week.Get("2025-07-08", users[0].ID).Note != "אולי" {
		t.Error("other day's cell disturbed")
	}
}

func TestSetOwnUpsertOverwritesFullRecord(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	as := NewAttendanceStore(db)

	as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID, model.AttendanceRecord{Coming: true, Guests: 3, Note: "עם סבתא"})
	as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID, model.AttendanceRecord{Coming: true})

	got, err := as.GetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID)
	if err != nil {
		t.Fatalf("get own: %v", err)
	}
	if got.Guests != 0 || got.Note != "" {
		t.Errorf("record = %+v, want guests and note reset", got)
	}
}

func TestGetWeekScopedToHome(t *testing.T) {
	db := setupTestDB(t)
	home1, users1 := seedHome(t, db, 1)
	as := NewAttendanceStore(db)

	hs := NewHomeStore(db)
	us := NewUserStore(db)
	home2, _ := hs.Create("בית אחר")
	u2, _ := us.Create("other@example.com", "אחר")
	hs.AddMember(home2.ID, u2.ID, "admin")

	as.SetOwn(home1.ID, "2025-W28", "2025-07-07", users1[0].ID, model.AttendanceRecord{Coming: true})
	as.SetOwn(home2.ID, "2025-W28", "2025-07-07", u2.ID, model.AttendanceRecord{Coming: true})

	week, _ := as.GetWeek(home1.ID, "2025-W28")
	if week.Get("2025-07-07", u2.ID).Coming {
		t.Error("another home's record leaked into the week")
	}
	if !week.Get("2025-07-07", users1[0].ID).Coming {
		t.Error("own home's record missing")
	}
}

func TestPruneBefore(t *testing.T) {
	db := setupTestDB(t)
	home, users := seedHome(t, db, 1)
	as := NewAttendanceStore(db)

	as.SetOwn(home.ID, "2025-W24", "2025-06-09", users[0].ID, model.AttendanceRecord{Coming: true})
	as.SetOwn(home.ID, "2025-W28", "2025-07-07", users[0].ID, model.AttendanceRecord{Coming: true})

	count, err := as.PruneBefore("2025-07-01")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if count != 1 {
		t.Errorf("pruned = %d, want 1", count)
	}

	old, _ := as.GetWeek(home.ID, "2025-W24")
	if len(old.Days) != 0 {
		t.Error("old week should be empty after prune")
	}
	kept, _ := as.GetWeek(home.ID, "2025-W28")
	if !kept.Get("2025-07-07", users[0].ID).Coming {
		t.Error("recent record should survive prune")
	}
}

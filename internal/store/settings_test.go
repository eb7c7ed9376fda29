package store

import "testing"

func TestSettingsGetUnset(t *testing.T) {
	db := setupTestDB(t)
	home, _ := seedHome(t, db, 1)
	ss := NewSettingsStore(db)

	v, err := ss.Get(home.ID, SettingHomeTimezone)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "" {
		t.Errorf("unset value = %q, want empty", v)
	}
}

func TestSettingsSetOverwrites(t *testing.T) {
	db := setupTestDB(t)
	home, _ := seedHome(t, db, 1)
	ss := NewSettingsStore(db)

	ss.Set(home.ID, SettingHomeTimezone, "Asia/Jerusalem")
	ss.Set(home.ID, SettingHomeTimezone, "UTC")

	v, _ := ss.Get(home.ID, SettingHomeTimezone)
	if v != "UTC" {
		t.Errorf("value = %q, want UTC", v)
	}
}

func TestSettingsAll(t *testing.T) {
	db := setupTestDB(t)
	home, _ := seedHome(t, db, 1)
	ss := NewSettingsStore(db)

	ss.Set(home.ID, SettingHomeTimezone, "Asia/Jerusalem")
	ss.Set(home.ID, SettingBackupEnabled, "true")

	all, err := ss.All(home.ID)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 || all[SettingHomeTimezone] != "Asia/Jerusalem" {
		t.Errorf("all = %v", all)
	}
}

func TestSettingsScopedToHome(t *testing.T) {
	db := setupTestDB(t)
	home1, _ := seedHome(t, db, 1)
	ss := NewSettingsStore(db)

	hs := NewHomeStore(db)
	home2, _ := hs.Create("בית אחר")

	ss.Set(home1.ID, SettingBackupEnabled, "true")

	v, _ := ss.Get(home2.ID, SettingBackupEnabled)
	if v != "" {
		t.Errorf("home2 value = %q, want empty", v)
	}
}

package store

import (
	"database/sql"
	"fmt"

	"homeboard/internal/model"
)

type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// GetWeek loads the week document for a home. A week with no entries yet
// returns an empty (non-nil) day map.
func (s *AttendanceStore) GetWeek(homeID int64, weekID string) (model.AttendanceWeek, error) {
	week := model.AttendanceWeek{
		WeekID: weekID,
		Days:   make(map[string]map[int64]model.AttendanceRecord),
	}

	rows, err := s.db.Query(
		`SELECT date_key, user_id, coming, guests, note FROM attendance
		 WHERE home_id = ? AND week_id = ?`,
		homeID, weekID,
	)
	if err != nil {
		return week, fmt.Errorf("get week: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dateKey string
		var userID int64
		var coming int
		var rec model.AttendanceRecord
		if err := rows.Scan(&dateKey, &userID, &coming, &rec.Guests, &rec.Note); err != nil {
			return week, fmt.Errorf("scan attendance: %w", err)
		}
		rec.Coming = coming != 0
		if week.Days[dateKey] == nil {
			week.Days[dateKey] = make(map[int64]model.AttendanceRecord)
		}
		week.Days[dateKey][userID] = rec
	}
	return week, rows.Err()
}

// GetOwn returns one member's record for one day, or the zero default.
func (s *AttendanceStore) GetOwn(homeID int64, weekID, dateKey string, userID int64) (model.AttendanceRecord, error) {
	var coming int
	var rec model.AttendanceRecord
	err := s.db.QueryRow(
		`SELECT coming, guests, note FROM attendance
		 WHERE home_id = ? AND week_id = ? AND date_key = ? AND user_id = ?`,
		homeID, weekID, dateKey, userID,
	).Scan(&coming, &rec.Guests, &rec.Note)
	if err == sql.ErrNoRows {
		return model.AttendanceRecord{}, nil
	}
	if err != nil {
		return model.AttendanceRecord{}, fmt.Errorf("get own record: %w", err)
	}
	rec.Coming = coming != 0
	return rec, nil
}

// SetOwn writes one member's full record for one day. The upsert touches a
// single row, so other members' entries and other days are untouched.
func (s *AttendanceStore) SetOwn(homeID int64, weekID, dateKey string, userID int64, rec model.AttendanceRecord) error {
	coming := 0
	if rec.Coming {
		coming = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO attendance (home_id, week_id, date_key, user_id, coming, guests, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(home_id, week_id, date_key, user_id)
		 DO UPDATE SET coming = excluded.coming, guests = excluded.guests,
		               note = excluded.note, updated_at = datetime('now')`,
		homeID, weekID, dateKey, userID, coming, rec.Guests, rec.Note,
	)
	if err != nil {
		return fmt.Errorf("set own record: %w", err)
	}
	return nil
}

// PruneBefore deletes attendance entries for days before the given date
// key. Lexicographic comparison is date order for YYYY-MM-DD keys.
func (s *AttendanceStore) PruneBefore(dateKey string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM attendance WHERE date_key < ?`, dateKey)
	if err != nil {
		return 0, fmt.Errorf("prune attendance: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

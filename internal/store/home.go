package store

import (
	"database/sql"
	"fmt"

	"homeboard/internal/model"
)

type HomeStore struct {
	db *sql.DB
}

func NewHomeStore(db *sql.DB) *HomeStore {
	return &HomeStore{db: db}
}

func scanHome(scanner interface{ Scan(...any) error }) (*model.Home, error) {
	var h model.Home
	var adminID sql.NullInt64
	err := scanner.Scan(&h.ID, &h.Name, &adminID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if adminID.Valid {
		h.AdminID = &adminID.Int64
	}
	return &h, nil
}

func scanHomeMember(scanner interface{ Scan(...any) error }) (*model.HomeMember, error) {
	var m model.HomeMember
	err := scanner.Scan(&m.ID, &m.HomeID, &m.UserID, &m.Role, &m.SortOrder, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const homeCols = `id, name, admin_id, created_at, updated_at`
const homeMemberCols = `id, home_id, user_id, role, sort_order, created_at`

func (s *HomeStore) Create(name string) (*model.Home, error) {
	result, err := s.db.Exec(`INSERT INTO homes (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert home: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HomeStore) GetByID(id int64) (*model.Home, error) {
	row := s.db.QueryRow(`SELECT `+homeCols+` FROM homes WHERE id = ?`, id)
	h, err := scanHome(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get home: %w", err)
	}
	return h, nil
}

func (s *HomeStore) UpdateName(id int64, name string) (*model.Home, error) {
	_, err := s.db.Exec(
		`UPDATE homes SET name = ?, updated_at = datetime('now') WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update home: %w", err)
	}
	return s.GetByID(id)
}

// SetAdmin records userID as the home's single admin.
func (s *HomeStore) SetAdmin(id, userID int64) error {
	_, err := s.db.Exec(
		`UPDATE homes SET admin_id = ?, updated_at = datetime('now') WHERE id = ?`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return nil
}

func (s *HomeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM homes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete home: %w", err)
	}
	return nil
}

// AddMember joins a user to a home. The schema enforces at most one home
// per user; joining while already a member of any home fails.
func (s *HomeStore) AddMember(homeID, userID int64, role string) (*model.HomeMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO home_members (home_id, user_id, role, sort_order)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM home_members WHERE home_id = ?))`,
		homeID, userID, role, homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert home member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+homeMemberCols+` FROM home_members WHERE id = ?`, id)
	return scanHomeMember(row)
}

func (s *HomeStore) GetMember(homeID, userID int64) (*model.HomeMember, error) {
	row := s.db.QueryRow(
		`SELECT `+homeMemberCols+` FROM home_members WHERE home_id = ? AND user_id = ?`,
		homeID, userID,
	)
	m, err := scanHomeMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// GetMemberByUser returns the user's home membership, if any.
func (s *HomeStore) GetMemberByUser(userID int64) (*model.HomeMember, error) {
	row := s.db.QueryRow(
		`SELECT `+homeMemberCols+` FROM home_members WHERE user_id = ?`,
		userID,
	)
	m, err := scanHomeMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member by user: %w", err)
	}
	return m, nil
}

// ListMembers returns the home's member profiles in member-list order.
func (s *HomeStore) ListMembers(homeID int64) ([]model.MemberProfile, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.email, u.name, m.role, m.sort_order
		 FROM home_members m JOIN users u ON u.id = m.user_id
		 WHERE m.home_id = ?
		 ORDER BY m.sort_order ASC, m.id ASC`,
		homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.MemberProfile
	for rows.Next() {
		var p model.MemberProfile
		if err := rows.Scan(&p.UserID, &p.Email, &p.Name, &p.Role, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, p)
	}
	return members, rows.Err()
}

// AllIDs returns every home's id, used by scheduled jobs.
func (s *HomeStore) AllIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM homes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list home ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan home id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *HomeStore) RemoveMember(homeID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM home_members WHERE home_id = ? AND user_id = ?`,
		homeID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

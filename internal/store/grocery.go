package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"homeboard/internal/grocery"
	"homeboard/internal/model"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var addedBy sql.NullInt64
	var checked int

	err := scanner.Scan(
		&item.ID, &item.HomeID, &item.Name, &item.Amount, &item.Note,
		&addedBy, &item.AddedAt, &checked,
	)
	if err != nil {
		return nil, err
	}

	item.Checked = checked != 0
	if addedBy.Valid {
		item.AddedBy = &addedBy.Int64
	}
	return &item, nil
}

const itemCols = `id, home_id, name, amount, note, added_by, added_at, checked`

func (s *GroceryStore) GetByID(id int64) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM grocery_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ListByHome returns the home's items newest first, the order the live list
// is rendered and the order duplicate lookup walks.
func (s *GroceryStore) ListByHome(homeID int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM grocery_items WHERE home_id = ? ORDER BY added_at DESC, id DESC`,
		homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindDuplicate returns the first unchecked item whose name matches
// case-insensitively, or nil. Checked items are never merge targets.
func (s *GroceryStore) FindDuplicate(homeID int64, name string) (*model.GroceryItem, error) {
	row := s.db.QueryRow(
		`SELECT `+itemCols+` FROM grocery_items
		 WHERE home_id = ? AND checked = 0 AND lower(name) = lower(?)
		 ORDER BY added_at DESC, id DESC LIMIT 1`,
		homeID, strings.TrimSpace(name),
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate: %w", err)
	}
	return item, nil
}

// AddItem adds an item, merging into an existing unchecked item of the same
// name when one exists: amounts are summed, notes joined, added_at
// refreshed. added_by stays with the original creator on merge. The
// returned bool reports whether a merge happened.
//
// The duplicate lookup and the write are two statements with no
// transaction; a concurrent add of the same name from two members resolves
// last-write-wins, per the product's consistency contract.
func (s *GroceryStore) AddItem(homeID int64, name, amount, note string, addedBy int64) (*model.GroceryItem, bool, error) {
	name = strings.TrimSpace(name)
	now := time.Now().UTC()

	existing, err := s.FindDuplicate(homeID, name)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		merged := grocery.MergeAmounts(existing.Amount, amount)
		mergedNote := grocery.MergeNotes(existing.Note, note)
		_, err := s.db.Exec(
			`UPDATE grocery_items SET amount = ?, note = ?, added_at = ? WHERE id = ?`,
			merged, mergedNote, now, existing.ID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("merge item: %w", err)
		}
		item, err := s.GetByID(existing.ID)
		return item, true, err
	}

	if strings.TrimSpace(amount) == "" {
		amount = "1"
	}
	result, err := s.db.Exec(
		`INSERT INTO grocery_items (home_id, name, amount, note, added_by, added_at) VALUES (?, ?, ?, ?, ?, ?)`,
		homeID, name, amount, note, addedBy, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	if err := s.recordName(homeID, name); err != nil {
		return nil, false, err
	}

	item, err := s.GetByID(id)
	return item, false, err
}

// recordName keeps the name in the home's history for autocomplete; the
// history survives item deletion.
func (s *GroceryStore) recordName(homeID int64, name string) error {
	_, err := s.db.Exec(
		`INSERT INTO grocery_name_history (home_id, name) VALUES (?, ?)
		 ON CONFLICT(home_id, name) DO NOTHING`,
		homeID, name,
	)
	if err != nil {
		return fmt.Errorf("record name: %w", err)
	}
	return nil
}

// Names returns every distinct item name ever used in the home, in
// first-added order.
func (s *GroceryStore) Names(homeID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM grocery_name_history WHERE home_id = ? ORDER BY id ASC`,
		homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *GroceryStore) ToggleChecked(id int64) (*model.GroceryItem, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	checked := 0
	if !item.Checked {
		checked = 1
	}
	if _, err := s.db.Exec(`UPDATE grocery_items SET checked = ? WHERE id = ?`, checked, id); err != nil {
		return nil, fmt.Errorf("toggle checked: %w", err)
	}
	return s.GetByID(id)
}

// SetAmount overwrites the amount verbatim; a blank amount becomes "1".
func (s *GroceryStore) SetAmount(id int64, amount string) (*model.GroceryItem, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		amount = "1"
	}
	_, err := s.db.Exec(`UPDATE grocery_items SET amount = ? WHERE id = ?`, amount, id)
	if err != nil {
		return nil, fmt.Errorf("set amount: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroceryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *GroceryStore) DeleteChecked(homeID int64) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM grocery_items WHERE home_id = ? AND checked = 1`,
		homeID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete checked: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *GroceryStore) ClearAll(homeID int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM grocery_items WHERE home_id = ?`, homeID)
	if err != nil {
		return 0, fmt.Errorf("clear all: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

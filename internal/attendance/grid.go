// Package attendance derives the weekly meal-attendance views from a home's
// week document. Derivation only; reads and writes live in the store.
package attendance

import (
	"time"

	"homeboard/internal/calendar"
	"homeboard/internal/model"
)

// Cell is one member × day entry of the weekly grid. Editable marks the
// acting member's own cells; whether a cell may be written is decided here,
// not by the client.
type Cell struct {
	DateKey  string                 `json:"date_key"`
	Record   model.AttendanceRecord `json:"record"`
	Editable bool                   `json:"editable"`
}

// Row is one member's week: seven cells, Sunday through Saturday.
type Row struct {
	Member model.MemberProfile `json:"member"`
	Cells  []Cell              `json:"cells"`
}

// WeeklyGrid builds the member × day table for one week. Every cell holds
// the effective record (stored or zero default); rows follow the home's
// member-list order.
func WeeklyGrid(weekDates []time.Time, members []model.MemberProfile, week model.AttendanceWeek, actingUserID int64) []Row {
	rows := make([]Row, 0, len(members))
	for _, m := range members {
		cells := make([]Cell, 0, len(weekDates))
		for _, d := range weekDates {
			key := calendar.DateKey(d)
			cells = append(cells, Cell{
				DateKey:  key,
				Record:   week.Get(key, m.UserID),
				Editable: m.UserID == actingUserID,
			})
		}
		rows = append(rows, Row{Member: m, Cells: cells})
	}
	return rows
}

// WhoIsComing returns the members whose record for dateKey has coming=true,
// in member-list order.
func WhoIsComing(members []model.MemberProfile, week model.AttendanceWeek, dateKey string) []model.MemberProfile {
	var out []model.MemberProfile
	for _, m := range members {
		if week.Get(dateKey, m.UserID).Coming {
			out = append(out, m)
		}
	}
	return out
}

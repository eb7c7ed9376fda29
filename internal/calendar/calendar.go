// Package calendar provides the week-bucketing arithmetic shared by the
// grocery and attendance ledgers. All functions are pure; "now" is always
// passed in by the caller.
//
// Two week conventions coexist: the grocery list buckets by Sunday at 12:00
// local time (WeekStart), while attendance keys weeks by a Sunday-based
// year/week-number string (ISOWeekID). Date keys use the local calendar
// date, consistently, everywhere.
package calendar

import (
	"fmt"
	"time"
)

// WeekStart returns the most recent Sunday relative to t, normalized to
// 12:00 local time. Two instants belong to the same grocery week iff their
// WeekStart values are equal. Idempotent.
func WeekStart(t time.Time) time.Time {
	d := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, t.Location())
}

// WeekLabel renders the date range weekStart..weekStart+6d: "7–13.7" when
// both ends fall in the same month, "28.9–4.10" otherwise.
func WeekLabel(weekStart time.Time) string {
	end := weekStart.AddDate(0, 0, 6)
	if weekStart.Month() == end.Month() && weekStart.Year() == end.Year() {
		return fmt.Sprintf("%d–%d.%d", weekStart.Day(), end.Day(), int(weekStart.Month()))
	}
	return fmt.Sprintf("%d.%d–%d.%d", weekStart.Day(), int(weekStart.Month()), end.Day(), int(end.Month()))
}

// RelativeWeekTitle labels a week by its 0-based rank among the weeks
// present in a list sorted descending by week start. The label is computed
// from rank, not elapsed time, so weeks with no activity compress the
// distance ("לפני 2 שבועות" may be older in calendar terms).
func RelativeWeekTitle(index int, isCurrent bool) string {
	switch {
	case index == 0 && isCurrent:
		return "השבוע"
	case index <= 1:
		return "שבוע שעבר"
	default:
		return fmt.Sprintf("לפני %d שבועות", index)
	}
}

// ISOWeekID formats t as "<year>-W<2-digit week>". The week number is
// day-of-year based with Sunday as the first day of the week — NOT strict
// ISO-8601. Persisted attendance documents are keyed by this exact
// numbering; do not change it.
func ISOWeekID(t time.Time) string {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	week := (t.YearDay()-1+int(jan1.Weekday()))/7 + 1
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// WeekDates returns the seven calendar days Sunday..Saturday of the week
// containing t. Time-of-day is carried over from t, not normalized; callers
// that need a map key use DateKey.
func WeekDates(t time.Time) []time.Time {
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = sunday.AddDate(0, 0, i)
	}
	return dates
}

// DateKey returns t's local calendar date as "YYYY-MM-DD".
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

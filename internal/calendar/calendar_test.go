package calendar

import (
	"regexp"
	"testing"
	"time"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestWeekStartNormalizesToSundayNoon(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"wednesday afternoon", date(2025, time.July, 9, 17), date(2025, time.July, 6, 12)},
		{"sunday evening", date(2025, time.July, 6, 20), date(2025, time.July, 6, 12)},
		{"sunday before noon", date(2025, time.July, 6, 3), date(2025, time.July, 6, 12)},
		{"saturday", date(2025, time.July, 12, 23), date(2025, time.July, 6, 12)},
		{"crosses month boundary", date(2025, time.August, 1, 10), date(2025, time.July, 27, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWeekStartIdempotent(t *testing.T) {
	for _, in := range []time.Time{
		date(2025, time.July, 9, 17),
		date(2025, time.January, 1, 0),
		date(2024, time.December, 31, 23),
	} {
		once := WeekStart(in)
		twice := WeekStart(once)
		if !once.Equal(twice) {
			t.Errorf("WeekStart not idempotent for %v: %v != %v", in, once, twice)
		}
	}
}

func TestSameWeekEquality(t *testing.T) {
	// Monday and the following Saturday share a week; the next Sunday does not.
	mon := date(2025, time.July, 7, 9)
	sat := date(2025, time.July, 12, 22)
	nextSun := date(2025, time.July, 13, 13)

	if !WeekStart(mon).Equal(WeekStart(sat)) {
		t.Error("Monday and Saturday of the same week should share a WeekStart")
	}
	if WeekStart(mon).Equal(WeekStart(nextSun)) {
		t.Error("the following Sunday should start a new week")
	}
}

func TestWeekLabel(t *testing.T) {
	tests := []struct {
		name string
		ws   time.Time
		want string
	}{
		{"same month", date(2025, time.July, 6, 12), "6–12.7"},
		{"cross month", date(2025, time.September, 28, 12), "28.9–4.10"},
		{"cross year", date(2025, time.December, 28, 12), "28.12–3.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekLabel(tt.ws); got != tt.want {
				t.Errorf("WeekLabel(%v) = %q, want %q", tt.ws, got, tt.want)
			}
		})
	}
}

func TestRelativeWeekTitle(t *testing.T) {
	tests := []struct {
		index     int
		isCurrent bool
		want      string
	}{
		{0, true, "השבוע"},
		{0, false, "שבוע שעבר"},
		{1, false, "שבוע שעבר"},
		{2, false, "לפני 2 שבועות"},
		{5, false, "לפני 5 שבועות"},
	}
	for _, tt := range tests {
		if got := RelativeWeekTitle(tt.index, tt.isCurrent); got != tt.want {
			t.Errorf("RelativeWeekTitle(%d, %v) = %q, want %q", tt.index, tt.isCurrent, got, tt.want)
		}
	}
}

var weekIDPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

func TestISOWeekIDFormat(t *testing.T) {
	for _, in := range []time.Time{
		date(2025, time.January, 1, 0),
		date(2025, time.July, 9, 17),
		date(2025, time.December, 31, 23),
		date(2024, time.February, 29, 12),
	} {
		got := ISOWeekID(in)
		if !weekIDPattern.MatchString(got) {
			t.Errorf("ISOWeekID(%v) = %q, does not match YYYY-Wnn", in, got)
		}
	}
}

func TestISOWeekIDSundayBased(t *testing.T) {
	// 2025-01-01 is a Wednesday; the first Sunday (Jan 5) starts week 2.
	if got := ISOWeekID(date(2025, time.January, 1, 0)); got != "2025-W01" {
		t.Errorf("Jan 1 = %q, want 2025-W01", got)
	}
	if got := ISOWeekID(date(2025, time.January, 4, 0)); got != "2025-W01" {
		t.Errorf("Jan 4 (Saturday) = %q, want 2025-W01", got)
	}
	if got := ISOWeekID(date(2025, time.January, 5, 0)); got != "2025-W02" {
		t.Errorf("Jan 5 (Sunday) = %q, want 2025-W02", got)
	}
}

func TestISOWeekIDStableWithinWeek(t *testing.T) {
	// All days Sunday..Saturday of one week map to the same ID.
	sunday := date(2025, time.July, 6, 0)
	want := ISOWeekID(sunday)
	for i := 1; i < 7; i++ {
		if got := ISOWeekID(sunday.AddDate(0, 0, i)); got != want {
			t.Errorf("day %d of week = %q, want %q", i, got, want)
		}
	}
	if got := ISOWeekID(sunday.AddDate(0, 0, 7)); got == want {
		t.Error("next Sunday should have a different week ID")
	}
}

func TestWeekDates(t *testing.T) {
	got := WeekDates(date(2025, time.July, 9, 17)) // Wednesday
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[0].Weekday() != time.Sunday {
		t.Errorf("first day = %v, want Sunday", got[0].Weekday())
	}
	if got[6].Weekday() != time.Saturday {
		t.Errorf("last day = %v, want Saturday", got[6].Weekday())
	}
	for i := 1; i < 7; i++ {
		if !got[i].Equal(got[i-1].AddDate(0, 0, 1)) {
			t.Errorf("days not consecutive at index %d", i)
		}
	}
	if got[0].Day() != 6 {
		t.Errorf("week of 2025-07-09 should start on the 6th, got %d", got[0].Day())
	}
}

func TestDateKey(t *testing.T) {
	if got := DateKey(date(2025, time.July, 6, 23)); got != "2025-07-06" {
		t.Errorf("DateKey = %q, want 2025-07-06", got)
	}
	if got := DateKey(date(2025, time.January, 2, 0)); got != "2025-01-02" {
		t.Errorf("DateKey = %q, want zero-padded 2025-01-02", got)
	}
}

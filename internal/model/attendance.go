package model

// AttendanceRecord is one member's answer for one calendar day. The zero
// value ({false, 0, ""}) is the effective record for any absent entry.
type AttendanceRecord struct {
	Coming bool   `json:"coming"`
	Guests int    `json:"guests"`
	Note   string `json:"note"`
}

// AttendanceWeek is the week document for one home: date key -> user ID ->
// record. Missing days and missing members fall back to the zero record.
type AttendanceWeek struct {
	WeekID string                               `json:"week_id"`
	Days   map[string]map[int64]AttendanceRecord `json:"days"`
}

// Get returns the stored record for the given day and member, or the zero
// default when absent.
func (w AttendanceWeek) Get(dateKey string, userID int64) AttendanceRecord {
	if day, ok := w.Days[dateKey]; ok {
		if rec, ok := day[userID]; ok {
			return rec
		}
	}
	return AttendanceRecord{}
}

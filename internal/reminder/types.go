package reminder

import (
	"strings"
	"time"
)

// Reminder categories as sent by the backend.
const (
	CategoryManual  = "manual"
	CategoryBudget  = "budget"
	CategorySavings = "savings"
)

// Wire layouts for the split due-instant fields.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	shortTimeLayout = "15:04"
	defaultTime     = "00:00:00"
)

// Reminder is a scheduled user-facing notice. Manual reminders carry a
// date and a time-of-day; budget and savings notices are delivered
// immediately and ignore both fields.
type Reminder struct {
	ID        int64  `json:"reminder_id"`
	Category  string `json:"category"`
	Title     string `json:"reminder_title"`
	IsRead    bool   `json:"is_read"`
	DateStart string `json:"reminder_date_start,omitempty"`
	Time      string `json:"reminder_time,omitempty"`
}

// IsManual reports whether the reminder has a deferred schedule.
func (r Reminder) IsManual() bool {
	return r.Category == CategoryManual
}

// ScheduledAt returns the due instant of a manual reminder in loc.
// ok is false for non-manual reminders and for malformed date/time data.
func (r Reminder) ScheduledAt(loc *time.Location) (time.Time, bool) {
	if !r.IsManual() {
		return time.Time{}, false
	}
	return ParseDueInstant(r.DateStart, r.Time, loc)
}

// DueBy reports whether the reminder is effectively due at now.
// Non-manual reminders are always due; malformed manual reminders never are.
func (r Reminder) DueBy(now time.Time, loc *time.Location) bool {
	if !r.IsManual() {
		return true
	}
	at, ok := r.ScheduledAt(loc)
	if !ok {
		return false
	}
	return !at.After(now)
}

// ParseDueInstant combines a YYYY-MM-DD date and an HH:MM:SS time into a
// single instant. Slash-separated dates and HH:MM times are accepted; an
// empty time means midnight.
func ParseDueInstant(date, clock string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	date = NormalizeDate(date)
	if date == "" {
		return time.Time{}, false
	}

	clock = NormalizeTime(clock)
	if clock == "" {
		clock = defaultTime
	}

	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate trims the value and converts "/" separators to "-".
func NormalizeDate(date string) string {
	return strings.ReplaceAll(strings.TrimSpace(date), "/", "-")
}

// NormalizeTime trims the value and pads HH:MM to HH:MM:SS.
func NormalizeTime(clock string) string {
	clock = strings.TrimSpace(clock)
	if _, err := time.Parse(shortTimeLayout, clock); err == nil && len(clock) == len(shortTimeLayout) {
		return clock + ":00"
	}
	return clock
}

package gamification

import "time"

// DateLayout is the calendar date format used for due dates and streak days.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// PreviousDay returns the calendar day before s.
func PreviousDay(s string) (string, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return "", false
	}
	return t.AddDate(0, 0, -1).Format(DateLayout), true
}

// DateIn formats the calendar date of now as observed in loc.
func DateIn(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

package statement

import "time"

const dateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// Window is an inclusive range of calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow builds a window from two dates, dropping any time of day.
func NewWindow(from, to time.Time) Window {
	return Window{From: DateOnly(from), To: DateOnly(to)}
}

// Empty reports whether the window contains no days.
func (w Window) Empty() bool {
	return w.From.After(w.To)
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	day := DateOnly(t)
	return !day.Before(w.From) && !day.After(w.To)
}

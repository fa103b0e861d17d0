package karma

import "time"

// Window is an inclusive range of UTC calendar days.
type Window struct {
	Start time.Time // first day, 00:00 UTC
	End   time.Time // last day, 00:00 UTC
}

// MonthWindow returns the calendar month containing now (in UTC).
// The last day is the first day of the next month minus one day.
func MonthWindow(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := start.AddDate(0, 1, 0)
	return Window{Start: start, End: nextMonth.AddDate(0, 0, -1)}
}

// Until returns the exclusive upper bound of the window, for `>= Start AND < Until` queries.
func (w Window) Until() time.Time {
	return w.End.AddDate(0, 0, 1)
}

// Contains reports whether t falls on one of the window's days.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.Until())
}

package util

import (
	"delegatecomp/internal/domain"
	"time"
)

const layout = "2006-01-02"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(layout) == t2.Format(layout)
}

// FirstOfMonth truncates a date to UTC midnight on the 1st.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween enumerates every calendar month from start's month through
// end's month, inclusive and ascending. Both bounds are normalized to the
// first of their month; an inverted range yields an empty slice.
func MonthsBetween(start, end time.Time) []domain.MonthKey {
	cursor := FirstOfMonth(start)
	last := FirstOfMonth(end)

	months := []domain.MonthKey{}
	for !cursor.After(last) {
		months = append(months, domain.NewMonthKey(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}

	return months
}

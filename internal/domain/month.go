package domain

import (
	"fmt"
	"time"
)

// MonthKey addresses all per-period data. Month is 1-12.
type MonthKey struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func NewMonthKey(t time.Time) MonthKey {
	return MonthKey{
		Month: int(t.Month()),
		Year:  t.Year(),
	}
}

// Date returns the first day of the month, UTC midnight.
func (m MonthKey) Date() time.Time {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m MonthKey) Equal(other MonthKey) bool {
	return m.Year == other.Year && m.Month == other.Month
}

func (m MonthKey) Next() MonthKey {
	return NewMonthKey(m.Date().AddDate(0, 1, 0))
}

func (m MonthKey) Previous() MonthKey {
	return NewMonthKey(m.Date().AddDate(0, -1, 0))
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

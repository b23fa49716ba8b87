package fiscalyears

import (
	"fmt"
	"time"
)

// FiscalYear represents a bounded accounting period of a company.
type FiscalYear struct {
	ID        int64      `json:"id"`
	CompanyID int64      `json:"companyId"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	IsCurrent bool       `json:"isCurrent"`
	IsLocked  bool       `json:"isLocked"`
	LockedBy  *int64     `json:"lockedBy,omitempty"`
	LockedAt  *time.Time `json:"lockedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Contains reports whether date falls within the fiscal year, both ends inclusive.
func (fy FiscalYear) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(truncateDay(fy.StartDate)) && !d.After(truncateDay(fy.EndDate))
}

// Overlaps reports whether the range [start, end] intersects the fiscal year.
func (fy FiscalYear) Overlaps(start, end time.Time) bool {
	return !truncateDay(start).After(truncateDay(fy.EndDate)) && !truncateDay(end).Before(truncateDay(fy.StartDate))
}

// DeriveName labels a fiscal year as "2024" or "2024-25".
func DeriveName(start, end time.Time) string {
	if start.Year() == end.Year() {
		return fmt.Sprintf("%d", start.Year())
	}
	return fmt.Sprintf("%d-%02d", start.Year(), end.Year()%100)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

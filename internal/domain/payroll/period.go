package payroll

import (
	"time"
)

// Period is one payroll cycle. It moves from open to closed exactly once.
type Period struct {
	ID        string
	CompanyID string
	Month     int
	Year      int
	StartDate time.Time
	EndDate   time.Time
	IsClosed  bool
	ClosedAt  *time.Time
	ClosedBy  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonthBounds returns the first and last day of a calendar month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// NewPeriod validates and builds an open period. Nil dates default to the calendar month.
func NewPeriod(companyID string, month, year int, startDate, endDate *time.Time) (Period, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return Period{}, ErrInvalidPeriod
	}
	start, end := MonthBounds(year, month)
	if startDate != nil {
		start = truncateDay(*startDate)
	}
	if endDate != nil {
		end = truncateDay(*endDate)
	}
	if end.Before(start) {
		return Period{}, ErrInvalidPeriodRange
	}
	return Period{
		CompanyID: companyID,
		Month:     month,
		Year:      year,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// Covers reports whether date falls inside [StartDate, EndDate].
func (p Period) Covers(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

func (p Period) Status() string {
	if p.IsClosed {
		return "closed"
	}
	return "open"
}

// Close performs the one-way open -> closed transition.
func (p *Period) Close(closedBy string, at time.Time) error {
	if p.IsClosed {
		return ErrPeriodAlreadyClosed
	}
	p.IsClosed = true
	p.ClosedAt = &at
	if closedBy != "" {
		p.ClosedBy = &closedBy
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

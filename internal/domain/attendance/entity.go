package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusHalfDay:
		return true
	}
	return false
}

// Attendance is one daily row, unique per (employee, date).
type Attendance struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	Date            time.Time
	Status          Status
	ClockIn         *Clock
	ClockOut        *Clock
	PieceWorkRateID *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined
	PieceWorkRate *PieceWorkRate
}

// PieceWorkRate is a borongan task priced per occurrence.
type PieceWorkRate struct {
	ID         string
	EmployeeID string
	TaskName   string
	Unit       string
	Price      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

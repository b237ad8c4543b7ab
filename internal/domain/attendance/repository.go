package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// Upsert creates or replaces the row for (employee, date)
	Upsert(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByEmployeeBetween returns rows in [from, to] with the piece-work rate joined
	GetByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]Attendance, error)
}

type PieceWorkRateRepository interface {
	GetByID(ctx context.Context, id string, employeeID string) (PieceWorkRate, error)
}

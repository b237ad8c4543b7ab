package attendance

import (
	"context"
)

// AttendanceService defines business logic for daily attendance entry
type AttendanceService interface {
	// RecordAttendance upserts the row for (employee, date); the date must fall in an open payroll period
	RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (AttendanceResponse, error)

	// ListAttendance returns an employee's rows between two dates
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceResponse, error)
}

package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound    = errors.New("attendance record not found")
	ErrPieceWorkRateNotFound = errors.New("piece-work rate not found")
	ErrInvalidClock          = errors.New("invalid clock time")
	ErrNoOpenPeriod          = errors.New("no open payroll period covers this date")
)

package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const microsecondsPerMinute = int64(60 * time.Second / time.Microsecond)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func clockFromTime(t pgtype.Time) *attendance.Clock {
	if !t.Valid {
		return nil
	}
	c := attendance.Clock(t.Microseconds / microsecondsPerMinute)
	return &c
}

func timeFromClock(c *attendance.Clock) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(*c) * microsecondsPerMinute, Valid: true}
}

// Upsert implements attendance.AttendanceRepository.
func (a *attendanceRepository) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, company_id, date, status, clock_in, clock_out, piece_work_rate_id, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			clock_in = EXCLUDED.clock_in,
			clock_out = EXCLUDED.clock_out,
			piece_work_rate_id = EXCLUDED.piece_work_rate_id,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING id, employee_id, company_id, date, status, clock_in, clock_out,
			piece_work_rate_id, notes, created_at, updated_at
	`

	var (
		saved             attendance.Attendance
		clockIn, clockOut pgtype.Time
	)
	err := q.QueryRow(ctx, query,
		att.EmployeeID, att.CompanyID, att.Date, att.Status,
		timeFromClock(att.ClockIn), timeFromClock(att.ClockOut), att.PieceWorkRateID, att.Notes,
	).Scan(
		&saved.ID, &saved.EmployeeID, &saved.CompanyID, &saved.Date, &saved.Status,
		&clockIn, &clockOut, &saved.PieceWorkRateID, &saved.Notes, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	saved.ClockIn = clockFromTime(clockIn)
	saved.ClockOut = clockFromTime(clockOut)

	return saved, nil
}

// GetByEmployeeBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT a.id, a.employee_id, a.company_id, a.date, a.status, a.clock_in, a.clock_out,
			a.piece_work_rate_id, a.notes, a.created_at, a.updated_at,
			pr.task_name, pr.unit, pr.price
		FROM attendances a
		LEFT JOIN piece_work_rates pr ON pr.id = a.piece_work_rate_id
		WHERE a.employee_id = $1
		  AND a.company_id = $2
		  AND a.date BETWEEN $3 AND $4
		ORDER BY a.date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendances: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		var (
			att               attendance.Attendance
			clockIn, clockOut pgtype.Time
			taskName, unit    *string
			price             decimal.NullDecimal
		)
		if err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date, &att.Status, &clockIn, &clockOut,
			&att.PieceWorkRateID, &att.Notes, &att.CreatedAt, &att.UpdatedAt,
			&taskName, &unit, &price,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att.ClockIn = clockFromTime(clockIn)
		att.ClockOut = clockFromTime(clockOut)
		if att.PieceWorkRateID != nil && taskName != nil {
			rate := attendance.PieceWorkRate{
				ID:         *att.PieceWorkRateID,
				EmployeeID: att.EmployeeID,
				TaskName:   *taskName,
				Price:      price.Decimal,
			}
			if unit != nil {
				rate.Unit = *unit
			}
			att.PieceWorkRate = &rate
		}
		result = append(result, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}

	return result, nil
}

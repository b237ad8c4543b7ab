package attendance

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	attendance.PieceWorkRateRepository
	employee.EmployeeRepository
	payroll.PeriodRepository
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	pieceWorkRateRepo attendance.PieceWorkRateRepository,
	employeeRepo employee.EmployeeRepository,
	periodRepo payroll.PeriodRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository:    attendanceRepo,
		PieceWorkRateRepository: pieceWorkRateRepo,
		EmployeeRepository:      employeeRepo,
		PeriodRepository:        periodRepo,
	}
}

// RecordAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID, claims.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !emp.IsActive() {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	date, _ := validator.IsValidDate(req.Date)

	// Entry is only accepted while an open period covers the date
	if _, err := a.PeriodRepository.FindOpenCovering(ctx, claims.CompanyID, date); err != nil {
		if errors.Is(err, payroll.ErrPeriodNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNoOpenPeriod
		}
		return attendance.AttendanceResponse{}, err
	}

	var rate *attendance.PieceWorkRate
	if req.PieceWorkRateID != nil {
		r, err := a.PieceWorkRateRepository.GetByID(ctx, *req.PieceWorkRateID, emp.ID)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		rate = &r
	}

	saved, err := a.AttendanceRepository.Upsert(ctx, attendance.Attendance{
		EmployeeID:      emp.ID,
		CompanyID:       claims.CompanyID,
		Date:            date,
		Status:          attendance.Status(req.Status),
		ClockIn:         req.ClockIn,
		ClockOut:        req.ClockOut,
		PieceWorkRateID: req.PieceWorkRateID,
		Notes:           req.Notes,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	saved.PieceWorkRate = rate

	return mapAttendanceToResponse(saved), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	from, _ := validator.IsValidDate(filter.StartDate)
	to, _ := validator.IsValidDate(filter.EndDate)

	rows, err := a.AttendanceRepository.GetByEmployeeBetween(ctx, filter.EmployeeID, from, to, claims.CompanyID)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.AttendanceResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, mapAttendanceToResponse(row))
	}
	return responses, nil
}

func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:         att.ID,
		EmployeeID: att.EmployeeID,
		Date:       att.Date.Format("2006-01-02"),
		Status:     string(att.Status),
		ClockIn:    att.ClockIn,
		ClockOut:   att.ClockOut,
		Notes:      att.Notes,
	}
	if att.PieceWorkRate != nil {
		resp.PieceWork = &attendance.PieceWorkResponse{
			ID:       att.PieceWorkRate.ID,
			TaskName: att.PieceWorkRate.TaskName,
			Unit:     att.PieceWorkRate.Unit,
			Price:    att.PieceWorkRate.Price,
		}
	}
	return resp
}

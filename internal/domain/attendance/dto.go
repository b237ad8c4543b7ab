package attendance

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordAttendanceRequest struct {
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	Status          string  `json:"status"`
	ClockIn         *Clock  `json:"clock_in,omitempty"`
	ClockOut        *Clock  `json:"clock_out,omitempty"`
	PieceWorkRateID *string `json:"piece_work_rate_id,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (r *RecordAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be in YYYY-MM-DD format"})
	}
	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of present, late, absent, half_day"})
	}
	if r.ClockIn != nil && !r.ClockIn.Valid() {
		errs = append(errs, validator.ValidationError{Field: "clock_in", Message: "must be a time of day"})
	}
	if r.ClockOut != nil && !r.ClockOut.Valid() {
		errs = append(errs, validator.ValidationError{Field: "clock_out", Message: "must be a time of day"})
	}
	if r.PieceWorkRateID != nil && validator.IsEmpty(*r.PieceWorkRateID) {
		errs = append(errs, validator.ValidationError{Field: "piece_work_rate_id", Message: "must not be blank"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceFilter struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	start, okStart := validator.IsValidDate(f.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
	}
	end, okEnd := validator.IsValidDate(f.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PieceWorkResponse struct {
	ID       string          `json:"id"`
	TaskName string          `json:"task_name"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
}

type AttendanceResponse struct {
	ID         string             `json:"id"`
	EmployeeID string             `json:"employee_id"`
	Date       string             `json:"date"`
	Status     string             `json:"status"`
	ClockIn    *Clock             `json:"clock_in,omitempty"`
	ClockOut   *Clock             `json:"clock_out,omitempty"`
	PieceWork  *PieceWorkResponse `json:"piece_work,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
}

package payroll

import "errors"

var (
	ErrPeriodNotFound        = errors.New("payroll period not found")
	ErrPeriodAlreadyExists   = errors.New("payroll period already exists for this month")
	ErrPeriodAlreadyClosed   = errors.New("payroll period is already closed")
	ErrPeriodClosed          = errors.New("payroll period is closed, payroll cannot be regenerated")
	ErrInvalidPeriod         = errors.New("invalid payroll period")
	ErrInvalidPeriodRange    = errors.New("period start date must not be after end date")
	ErrPayrollNotFound       = errors.New("payroll not found")
	ErrConfigNotFound        = errors.New("statutory config not found")
	ErrInvalidCategory       = errors.New("invalid line item category")
	ErrNoEmployeesToGenerate = errors.New("no active employees to generate payroll for")
)

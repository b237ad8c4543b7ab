package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID        string  `json:"id"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Status    string  `json:"status"`
	IsClosed  bool    `json:"is_closed"`
	ClosedAt  *string `json:"closed_at,omitempty"`
	ClosedBy  *string `json:"closed_by,omitempty"`
}

// ========== STATUTORY CONFIG DTOs ==========

type ContributionRatesDTO struct {
	JKK decimal.Decimal `json:"jkk_pct"`
	JKM decimal.Decimal `json:"jkm_pct"`
	JHT decimal.Decimal `json:"jht_pct"`
	JP  decimal.Decimal `json:"jp_pct"`
	JKN decimal.Decimal `json:"jkn_pct"`
}

type StatutoryConfigResponse struct {
	ID                  string               `json:"id,omitempty"`
	CompanyID           string               `json:"company_id"`
	Employee            ContributionRatesDTO `json:"employee"`
	Employer            ContributionRatesDTO `json:"employer"`
	WorkingDaysPerMonth int                  `json:"working_days_per_month"`
	OvertimeRate        decimal.Decimal      `json:"overtime_rate"`
	IsDefault           bool                 `json:"is_default"`
}

type UpdateContributionRates struct {
	JKK *decimal.Decimal `json:"jkk_pct,omitempty"`
	JKM *decimal.Decimal `json:"jkm_pct,omitempty"`
	JHT *decimal.Decimal `json:"jht_pct,omitempty"`
	JP  *decimal.Decimal `json:"jp_pct,omitempty"`
	JKN *decimal.Decimal `json:"jkn_pct,omitempty"`
}

func (u UpdateContributionRates) each(fn func(kind StatutoryKind, v *decimal.Decimal)) {
	fn(StatutoryJKK, u.JKK)
	fn(StatutoryJKM, u.JKM)
	fn(StatutoryJHT, u.JHT)
	fn(StatutoryJP, u.JP)
	fn(StatutoryJKN, u.JKN)
}

// ApplyTo copies the set fields onto rates.
func (u UpdateContributionRates) ApplyTo(rates *ContributionRates) {
	u.each(func(kind StatutoryKind, v *decimal.Decimal) {
		if v != nil {
			rates.set(kind, *v)
		}
	})
}

type UpdateStatutoryConfigRequest struct {
	Employee            UpdateContributionRates `json:"employee"`
	Employer            UpdateContributionRates `json:"employer"`
	WorkingDaysPerMonth *int                    `json:"working_days_per_month,omitempty"`
	OvertimeRate        *decimal.Decimal        `json:"overtime_rate,omitempty"`
}

var hundred = decimal.NewFromInt(100)

func (r *UpdateStatutoryConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	checkRates := func(side string, u UpdateContributionRates) {
		u.each(func(kind StatutoryKind, v *decimal.Decimal) {
			if v != nil && (v.IsNegative() || v.GreaterThan(hundred)) {
				errs = append(errs, validator.ValidationError{
					Field:   side + "." + string(kind) + "_pct",
					Message: "must be between 0 and 100",
				})
			}
		})
	}
	checkRates("employee", r.Employee)
	checkRates("employer", r.Employer)

	if r.WorkingDaysPerMonth != nil && (*r.WorkingDaysPerMonth < 1 || *r.WorkingDaysPerMonth > 31) {
		errs = append(errs, validator.ValidationError{Field: "working_days_per_month", Message: "must be between 1 and 31"})
	}
	if r.OvertimeRate != nil && !r.OvertimeRate.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "overtime_rate", Message: "must be greater than 0"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	PeriodID    string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{Field: "period_id", Message: "is required"})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain blank ids"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EmployeeFailure reports an employee whose payroll could not be generated.
type EmployeeFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// DataWarning flags input data that was tolerated but looks wrong.
type DataWarning struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date,omitempty"`
	Message    string `json:"message"`
}

type GenerateResult struct {
	RunID     string            `json:"run_id"`
	PeriodID  string            `json:"period_id"`
	Generated []PayrollResponse `json:"generated"`
	Failures  []EmployeeFailure `json:"failures"`
	Warnings  []DataWarning     `json:"warnings"`
}

// ========== PAYROLL DTOs ==========

type LineItemResponse struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

type EmployerContributionsResponse struct {
	TKJKK decimal.Decimal `json:"tk_jkk_company"`
	TKJKM decimal.Decimal `json:"tk_jkm_company"`
	TKJHT decimal.Decimal `json:"tk_jht_company"`
	TKJP  decimal.Decimal `json:"tk_jp_company"`
	JKN   decimal.Decimal `json:"jkn_company"`
}

type PayrollResponse struct {
	ID                    string                        `json:"id"`
	EmployeeID            string                        `json:"employee_id"`
	EmployeeName          string                        `json:"employee_name,omitempty"`
	EmployeeCode          string                        `json:"employee_code,omitempty"`
	PeriodID              string                        `json:"period_id"`
	BasicSalary           decimal.Decimal               `json:"basic_salary"`
	TotalAllowance        decimal.Decimal               `json:"total_allowance"`
	TotalDeduction        decimal.Decimal               `json:"total_deduction"`
	NetSalary             decimal.Decimal               `json:"net_salary"`
	EmployerContributions EmployerContributionsResponse `json:"employer_contributions"`
	Allowances            []LineItemResponse            `json:"allowances,omitempty"`
	Deductions            []LineItemResponse            `json:"deductions,omitempty"`
	GeneratedAt           *string                       `json:"generated_at,omitempty"`
}

type PayrollFilter struct {
	PeriodID   *string `json:"period_id,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

func (f *PayrollFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	switch f.SortBy {
	case "net_salary", "basic_salary", "employee_name", "created_at":
	default:
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

type ListPayrollResponse struct {
	Data       []PayrollResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// RegisterRow is one line of the payroll register export.
type RegisterRow struct {
	EmployeeCode   string `csv:"employee_code"`
	EmployeeName   string `csv:"employee_name"`
	BasicSalary    string `csv:"basic_salary"`
	TotalAllowance string `csv:"total_allowance"`
	TotalDeduction string `csv:"total_deduction"`
	NetSalary      string `csv:"net_salary"`
	TKJKKCompany   string `csv:"tk_jkk_company"`
	TKJKMCompany   string `csv:"tk_jkm_company"`
	TKJHTCompany   string `csv:"tk_jht_company"`
	TKJPCompany    string `csv:"tk_jp_company"`
	JKNCompany     string `csv:"jkn_company"`
}

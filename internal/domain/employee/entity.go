package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll-facing view of an employee owned by the HR core.
type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal
	DefaultAllowance *decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.DeletedAt == nil
}

// Salary returns the base salary, zero when unset.
func (e Employee) Salary() decimal.Decimal {
	if e.BaseSalary == nil {
		return decimal.Zero
	}
	return *e.BaseSalary
}

// Allowance returns the default fixed allowance, zero when unset.
func (e Employee) Allowance() decimal.Decimal {
	if e.DefaultAllowance == nil {
		return decimal.Zero
	}
	return *e.DefaultAllowance
}

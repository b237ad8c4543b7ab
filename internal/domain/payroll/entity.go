package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployerContributions are the company-side BPJS amounts stored on the payroll itself.
type EmployerContributions struct {
	TKJKK decimal.Decimal
	TKJKM decimal.Decimal
	TKJHT decimal.Decimal
	TKJP  decimal.Decimal
	JKN   decimal.Decimal
}

func (c EmployerContributions) Total() decimal.Decimal {
	return c.TKJKK.Add(c.TKJKM).Add(c.TKJHT).Add(c.TKJP).Add(c.JKN)
}

// Payroll - one generated result per (employee, period)
type Payroll struct {
	ID                    string
	EmployeeID            string
	CompanyID             string
	PeriodID              string
	BasicSalary           decimal.Decimal
	TotalAllowance        decimal.Decimal
	TotalDeduction        decimal.Decimal
	NetSalary             decimal.Decimal
	EmployerContributions EmployerContributions
	GeneratedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Items        []LineItem
}

// ApplyTotals recomputes the totals from items; net = basic + allowances - deductions.
func (p *Payroll) ApplyTotals(items []LineItem) {
	allowance := decimal.Zero
	deduction := decimal.Zero
	for _, item := range items {
		switch item.Kind {
		case KindAllowance:
			allowance = allowance.Add(item.Amount)
		case KindDeduction:
			deduction = deduction.Add(item.Amount)
		}
	}
	p.TotalAllowance = allowance
	p.TotalDeduction = deduction
	p.NetSalary = p.BasicSalary.Add(allowance).Sub(deduction)
	p.Items = items
}

// LineItem is an Allowance or a Deduction row, unique per (employee, period, category key).
type LineItem struct {
	ID         string
	EmployeeID string
	PeriodID   string
	Kind       LineItemKind
	Category   LineItemCategory
	Name       string
	Amount     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

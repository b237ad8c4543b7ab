package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	DefaultWorkingDaysPerMonth = 30
	HoursPerDay                = 8
)

var DefaultOvertimeRate = decimal.RequireFromString("1.5")

// ContributionRates are BPJS percentages in [0, 100].
type ContributionRates struct {
	JKK decimal.Decimal
	JKM decimal.Decimal
	JHT decimal.Decimal
	JP  decimal.Decimal
	JKN decimal.Decimal
}

func (r ContributionRates) Rate(kind StatutoryKind) decimal.Decimal {
	switch kind {
	case StatutoryJKK:
		return r.JKK
	case StatutoryJKM:
		return r.JKM
	case StatutoryJHT:
		return r.JHT
	case StatutoryJP:
		return r.JP
	case StatutoryJKN:
		return r.JKN
	}
	return decimal.Zero
}

func (r *ContributionRates) set(kind StatutoryKind, v decimal.Decimal) {
	switch kind {
	case StatutoryJKK:
		r.JKK = v
	case StatutoryJKM:
		r.JKM = v
	case StatutoryJHT:
		r.JHT = v
	case StatutoryJP:
		r.JP = v
	case StatutoryJKN:
		r.JKN = v
	}
}

// StatutoryConfig is the company BPJS table plus the salary divisors.
type StatutoryConfig struct {
	ID                  string
	CompanyID           string
	Employee            ContributionRates
	Employer            ContributionRates
	WorkingDaysPerMonth int
	OvertimeRate        decimal.Decimal
	UpdatedBy           *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DefaultStatutoryConfig is used until a company saves its own table.
func DefaultStatutoryConfig(companyID string) StatutoryConfig {
	return StatutoryConfig{
		CompanyID: companyID,
		Employee: ContributionRates{
			JKK: decimal.Zero,
			JKM: decimal.Zero,
			JHT: decimal.NewFromInt(2),
			JP:  decimal.NewFromInt(1),
			JKN: decimal.NewFromInt(1),
		},
		Employer: ContributionRates{
			JKK: decimal.RequireFromString("0.24"),
			JKM: decimal.RequireFromString("0.3"),
			JHT: decimal.RequireFromString("3.7"),
			JP:  decimal.NewFromInt(2),
			JKN: decimal.NewFromInt(4),
		},
		WorkingDaysPerMonth: DefaultWorkingDaysPerMonth,
		OvertimeRate:        DefaultOvertimeRate,
	}
}

// Sanitize zeroes out-of-range percentages and restores default divisors.
// It returns the names of the fields it had to replace.
func (c StatutoryConfig) Sanitize() (StatutoryConfig, []string) {
	var replaced []string
	for _, kind := range StatutoryKinds {
		if pct, ok := money.NormalizePercent(c.Employee.Rate(kind)); !ok {
			c.Employee.set(kind, pct)
			replaced = append(replaced, "employee_"+string(kind)+"_pct")
		}
		if pct, ok := money.NormalizePercent(c.Employer.Rate(kind)); !ok {
			c.Employer.set(kind, pct)
			replaced = append(replaced, "employer_"+string(kind)+"_pct")
		}
	}
	if c.WorkingDaysPerMonth <= 0 {
		c.WorkingDaysPerMonth = DefaultWorkingDaysPerMonth
		replaced = append(replaced, "working_days_per_month")
	}
	if !c.OvertimeRate.IsPositive() {
		c.OvertimeRate = DefaultOvertimeRate
		replaced = append(replaced, "overtime_rate")
	}
	return c, replaced
}

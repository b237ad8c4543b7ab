package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

var minutesPerWorkDay = decimal.NewFromInt(payroll.HoursPerDay * 60)

// salaryRates derives every salary-based amount from one basic salary.
// daily = basic / workingDays and hourly = daily / 8 are never materialized;
// each amount is a single division so nothing is rounded twice.
type salaryRates struct {
	basic        decimal.Decimal
	workingDays  decimal.Decimal
	overtimeRate decimal.Decimal
}

func newSalaryRates(basic decimal.Decimal, cfg payroll.StatutoryConfig) salaryRates {
	return salaryRates{
		basic:        basic,
		workingDays:  decimal.NewFromInt(int64(cfg.WorkingDaysPerMonth)),
		overtimeRate: cfg.OvertimeRate,
	}
}

// salaried is false for a zero or negative basic salary; salary-derived items are skipped then.
func (r salaryRates) salaried() bool {
	return r.basic.IsPositive()
}

// days returns days * daily salary.
func (r salaryRates) days(days decimal.Decimal) decimal.Decimal {
	return money.Prorate(r.basic, days, r.workingDays)
}

// overtime returns minutes/60 * hourly rate * overtime rate.
func (r salaryRates) overtime(minutes int) decimal.Decimal {
	return money.Prorate(
		r.basic.Mul(r.overtimeRate),
		decimal.NewFromInt(int64(minutes)),
		r.workingDays.Mul(minutesPerWorkDay),
	)
}

package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// statutoryItems produces one employee-side BPJS deduction per nonzero percentage.
func statutoryItems(cfg payroll.StatutoryConfig, rates salaryRates) []desiredItem {
	if !rates.salaried() {
		return nil
	}

	var items []desiredItem
	for _, kind := range payroll.StatutoryKinds {
		pct := cfg.Employee.Rate(kind)
		if pct.IsZero() {
			continue
		}
		items = append(items, newDesiredItem(payroll.Statutory(kind), money.Percent(rates.basic, pct)))
	}
	return items
}

// employerContributions are stored on the payroll row, never as line items.
func employerContributions(cfg payroll.StatutoryConfig, rates salaryRates) payroll.EmployerContributions {
	if !rates.salaried() {
		return payroll.EmployerContributions{}
	}
	amount := func(kind payroll.StatutoryKind) decimal.Decimal {
		return money.Percent(rates.basic, cfg.Employer.Rate(kind))
	}
	return payroll.EmployerContributions{
		TKJKK: amount(payroll.StatutoryJKK),
		TKJKM: amount(payroll.StatutoryJKM),
		TKJHT: amount(payroll.StatutoryJHT),
		TKJP:  amount(payroll.StatutoryJP),
		JKN:   amount(payroll.StatutoryJKN),
	}
}

package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// desiredItem is a line item the current inputs call for.
type desiredItem struct {
	category payroll.LineItemCategory
	name     string
	amount   decimal.Decimal
}

func newDesiredItem(category payroll.LineItemCategory, amount decimal.Decimal) desiredItem {
	return desiredItem{category: category, name: category.Label(), amount: amount}
}

type employeeInputs struct {
	employee   employee.Employee
	attendance []attendance.Attendance
	leaves     []leave.LeaveRequest
}

type assembly struct {
	basicSalary decimal.Decimal
	items       []desiredItem
	employer    payroll.EmployerContributions
	warnings    []payroll.DataWarning
}

// assemble computes every line item for one employee from a config snapshot.
// All steps share the rates derived once from the basic salary.
func assemble(in employeeInputs, period payroll.Period, cfg payroll.StatutoryConfig) assembly {
	basic := in.employee.Salary()
	rates := newSalaryRates(basic, cfg)

	var items []desiredItem
	if allowance := in.employee.Allowance(); allowance.IsPositive() {
		items = append(items, newDesiredItem(payroll.FixedAllowance(), allowance))
	}

	summary := summarizeAttendance(in.employee.ID, in.attendance)
	items = append(items, attendanceItems(summary, rates)...)
	items = append(items, leaveItems(unpaidLeaveDays(in.leaves, period.StartDate, period.EndDate), rates)...)
	items = append(items, statutoryItems(cfg, rates)...)

	return assembly{
		basicSalary: basic,
		items:       items,
		employer:    employerContributions(cfg, rates),
		warnings:    summary.warnings,
	}
}

// reconcilePlan is the set of writes that brings stored line items in line with the desired set.
type reconcilePlan struct {
	upserts []payroll.LineItem
	kept    []payroll.LineItem
	deletes []string
}

// reconcile diffs desired items against existing rows for one (employee, period).
// Create-once categories keep an existing row untouched; every other desired
// category is upserted, and rows whose category is no longer desired are deleted.
func reconcile(employeeID, periodID string, existing []payroll.LineItem, desired []desiredItem) reconcilePlan {
	byKey := make(map[string]payroll.LineItem, len(existing))
	for _, item := range existing {
		byKey[item.Category.Key()] = item
	}

	var plan reconcilePlan
	wanted := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		key := d.category.Key()
		wanted[key] = struct{}{}

		if current, ok := byKey[key]; ok && d.category.CreateOnce() {
			plan.kept = append(plan.kept, current)
			continue
		}
		plan.upserts = append(plan.upserts, payroll.LineItem{
			EmployeeID: employeeID,
			PeriodID:   periodID,
			Kind:       d.category.Kind(),
			Category:   d.category,
			Name:       d.name,
			Amount:     d.amount,
		})
	}

	for _, item := range existing {
		if _, ok := wanted[item.Category.Key()]; !ok {
			plan.deletes = append(plan.deletes, item.ID)
		}
	}

	return plan
}

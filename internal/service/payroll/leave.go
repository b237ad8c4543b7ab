package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// unpaidLeaveDays counts the days of unpaid leave inside [start, end], both inclusive.
func unpaidLeaveDays(requests []leave.LeaveRequest, start, end time.Time) int {
	start, end = dateOnly(start), dateOnly(end)

	total := 0
	for _, req := range requests {
		if !req.IsUnpaid() {
			continue
		}
		from := maxTime(dateOnly(req.StartDate), start)
		to := minTime(dateOnly(req.EndDate), end)
		if to.Before(from) {
			continue
		}
		total += int(to.Sub(from)/day) + 1
	}
	return total
}

func leaveItems(days int, rates salaryRates) []desiredItem {
	if days <= 0 || !rates.salaried() {
		return nil
	}
	return []desiredItem{
		newDesiredItem(payroll.UnpaidLeaveDeduction(), rates.days(decimal.NewFromInt(int64(days)))),
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

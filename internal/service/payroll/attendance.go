package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const regularMinutesPerDay = payroll.HoursPerDay * 60

var half = decimal.RequireFromString("0.5")

type pieceWorkTally struct {
	rate  attendance.PieceWorkRate
	count int
}

// attendanceSummary is what one employee's attendance rows contribute to a period.
type attendanceSummary struct {
	absentDays      int
	halfDays        int
	overtimeMinutes int
	pieceWork       []pieceWorkTally // in order of first occurrence
	warnings        []payroll.DataWarning
}

func (s attendanceSummary) absenceDays() decimal.Decimal {
	return decimal.NewFromInt(int64(s.absentDays)).Add(half.Mul(decimal.NewFromInt(int64(s.halfDays))))
}

func summarizeAttendance(employeeID string, rows []attendance.Attendance) attendanceSummary {
	var sum attendanceSummary
	tallies := make(map[string]int)

	for _, row := range rows {
		switch row.Status {
		case attendance.StatusAbsent:
			sum.absentDays++
		case attendance.StatusHalfDay:
			sum.halfDays++
		}

		if row.ClockIn != nil && row.ClockOut != nil {
			worked, ok := attendance.WorkedMinutes(row.ClockIn, row.ClockOut)
			if !ok {
				sum.warnings = append(sum.warnings, payroll.DataWarning{
					EmployeeID: employeeID,
					Date:       row.Date.Format("2006-01-02"),
					Message:    fmt.Sprintf("clock_out %s is not after clock_in %s, no overtime counted", row.ClockOut, row.ClockIn),
				})
			} else if worked > regularMinutesPerDay {
				sum.overtimeMinutes += worked - regularMinutesPerDay
			}
		}

		if row.PieceWorkRateID == nil {
			continue
		}
		if row.PieceWorkRate == nil {
			sum.warnings = append(sum.warnings, payroll.DataWarning{
				EmployeeID: employeeID,
				Date:       row.Date.Format("2006-01-02"),
				Message:    fmt.Sprintf("piece-work rate %s not found, entry skipped", *row.PieceWorkRateID),
			})
			continue
		}
		idx, seen := tallies[row.PieceWorkRate.ID]
		if !seen {
			idx = len(sum.pieceWork)
			tallies[row.PieceWorkRate.ID] = idx
			sum.pieceWork = append(sum.pieceWork, pieceWorkTally{rate: *row.PieceWorkRate})
		}
		sum.pieceWork[idx].count++
	}

	return sum
}

// attendanceItems turns a summary into piece-work, overtime and absence line items.
func attendanceItems(sum attendanceSummary, rates salaryRates) []desiredItem {
	var items []desiredItem

	for _, t := range sum.pieceWork {
		items = append(items, desiredItem{
			category: payroll.PieceWork(t.rate.ID),
			name:     payroll.PieceWorkLabel(t.rate.TaskName, t.rate.Unit),
			amount:   t.rate.Price.Mul(decimal.NewFromInt(int64(t.count))),
		})
	}

	if !rates.salaried() {
		return items
	}

	if sum.overtimeMinutes > 0 {
		items = append(items, newDesiredItem(payroll.Overtime(), rates.overtime(sum.overtimeMinutes)))
	}
	if days := sum.absenceDays(); days.IsPositive() {
		items = append(items, newDesiredItem(payroll.AbsenceDeduction(), rates.days(days)))
	}

	return items
}

package payroll

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

type fixture struct {
	store  *memoryStore
	svc    *PayrollServiceImpl
	ctx    context.Context
	period payroll.Period
}

func newFixture(t *testing.T) fixture {
	store := newMemoryStore()
	return fixture{
		store:  store,
		svc:    store.service(2),
		ctx:    authContext(t, testCompanyID, "user-1"),
		period: store.addPeriod(testCompanyID, 1, 2025),
	}
}

func (f fixture) generate(t *testing.T, employeeIDs ...string) payroll.GenerateResult {
	t.Helper()
	result, err := f.svc.GeneratePayroll(f.ctx, payroll.GeneratePayrollRequest{PeriodID: f.period.ID, EmployeeIDs: employeeIDs})
	require.NoError(t, err)
	return result
}

func (f fixture) payrollFor(employeeID string) payroll.Payroll {
	return f.store.payrolls[payrollKey(employeeID, f.period.ID)]
}

func TestGeneratePayroll_FullBreakdown(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{
		CompanyID: testCompanyID, EmployeeCode: "EMP001", FullName: "Budi Santoso",
		BaseSalary: dp("3000000"), DefaultAllowance: dp("250000"),
	})
	f.store.attendance[emp.ID] = []attendance.Attendance{
		{Date: date(2025, 1, 6), Status: attendance.StatusAbsent},
		{Date: date(2025, 1, 7), Status: attendance.StatusHalfDay},
		{Date: date(2025, 1, 8), Status: attendance.StatusPresent, ClockIn: clock(t, "08:00"), ClockOut: clock(t, "18:00")},
	}
	f.store.leaves[emp.ID] = []leave.LeaveRequest{
		{StartDate: date(2025, 1, 20), EndDate: date(2025, 1, 21), LeaveType: leave.LeaveTypeSick, Status: leave.LeaveRequestStatusApprovedByHR},
	}

	result := f.generate(t)

	require.Len(t, result.Generated, 1)
	assert.Empty(t, result.Failures)
	assert.NotEmpty(t, result.RunID)

	items := f.store.lineItems(emp.ID, f.period.ID)
	expected := map[payroll.LineItemCategory]string{
		payroll.FixedAllowance():                "250000",
		payroll.Overtime():                      "37500", // 2 hours at 12,500 x 1.5
		payroll.AbsenceDeduction():              "150000",
		payroll.UnpaidLeaveDeduction():          "200000",
		payroll.Statutory(payroll.StatutoryJHT): "60000",
		payroll.Statutory(payroll.StatutoryJP):  "30000",
		payroll.Statutory(payroll.StatutoryJKN): "30000",
	}
	require.Len(t, items, len(expected))
	for category, amount := range expected {
		item, found := findItem(items, category)
		require.True(t, found, "missing %s", category)
		assert.True(t, item.Amount.Equal(d(amount)), "%s: got %s want %s", category, item.Amount, amount)
	}

	p := f.payrollFor(emp.ID)
	assert.True(t, p.BasicSalary.Equal(d("3000000")))
	assert.True(t, p.TotalAllowance.Equal(d("287500")))
	assert.True(t, p.TotalDeduction.Equal(d("470000")))
	assert.True(t, p.NetSalary.Equal(d("2817500")))
	assert.True(t, p.EmployerContributions.TKJHT.Equal(d("111000")))
	assert.NotNil(t, p.GeneratedAt)

	resp := result.Generated[0]
	assert.Equal(t, "EMP001", resp.EmployeeCode)
	assert.Len(t, resp.Allowances, 2)
	assert.Len(t, resp.Deductions, 5)
}

func TestGeneratePayroll_Idempotent(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("2400000"), DefaultAllowance: dp("100000")})
	f.store.attendance[emp.ID] = []attendance.Attendance{
		{Date: date(2025, 1, 6), Status: attendance.StatusPresent, ClockIn: clock(t, "08:00"), ClockOut: clock(t, "19:00")},
		{Date: date(2025, 1, 7), Status: attendance.StatusAbsent},
	}

	f.generate(t)
	first := f.store.lineItems(emp.ID, f.period.ID)
	firstPayroll := f.payrollFor(emp.ID)

	f.generate(t)
	second := f.store.lineItems(emp.ID, f.period.ID)
	secondPayroll := f.payrollFor(emp.ID)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Category, second[i].Category)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
	assert.Equal(t, firstPayroll.ID, secondPayroll.ID)
	assert.True(t, firstPayroll.NetSalary.Equal(secondPayroll.NetSalary))

	overtime, found := findItem(second, payroll.Overtime())
	require.True(t, found)
	assert.True(t, overtime.Amount.Equal(d("45000")))
}

func TestGeneratePayroll_TotalsInvariant(t *testing.T) {
	f := newFixture(t)
	salaries := []string{"0", "1234567", "4999999", "15000000"}
	for i, salary := range salaries {
		emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP00" + string(rune('1'+i)), BaseSalary: dp(salary)})
		f.store.attendance[emp.ID] = []attendance.Attendance{
			{Date: date(2025, 1, 6), Status: attendance.StatusHalfDay},
			{Date: date(2025, 1, 7), Status: attendance.StatusPresent, ClockIn: clock(t, "07:13"), ClockOut: clock(t, "17:59")},
		}
	}

	result := f.generate(t)
	require.Len(t, result.Generated, len(salaries))

	for _, p := range f.store.payrolls {
		assert.True(t, p.NetSalary.Equal(p.BasicSalary.Add(p.TotalAllowance).Sub(p.TotalDeduction)))

		allowance, deduction := decimal.Zero, decimal.Zero
		for _, item := range f.store.lineItems(p.EmployeeID, p.PeriodID) {
			if item.Kind == payroll.KindAllowance {
				allowance = allowance.Add(item.Amount)
			} else {
				deduction = deduction.Add(item.Amount)
			}
		}
		assert.True(t, allowance.Equal(p.TotalAllowance))
		assert.True(t, deduction.Equal(p.TotalDeduction))
	}
}

func TestGeneratePayroll_PieceWorkCreateOnce(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})
	rate := attendance.PieceWorkRate{ID: "rate-1", EmployeeID: emp.ID, TaskName: "Las", Unit: "titik", Price: d("25000")}
	f.store.attendance[emp.ID] = []attendance.Attendance{
		{Date: date(2025, 1, 6), Status: attendance.StatusPresent, PieceWorkRateID: &rate.ID, PieceWorkRate: &rate},
		{Date: date(2025, 1, 7), Status: attendance.StatusPresent, PieceWorkRateID: &rate.ID, PieceWorkRate: &rate},
	}

	f.generate(t)
	before, found := findItem(f.store.lineItems(emp.ID, f.period.ID), payroll.PieceWork("rate-1"))
	require.True(t, found)
	assert.Equal(t, "Borongan: Las (titik)", before.Name)
	assert.True(t, before.Amount.Equal(d("50000")))

	changed := rate
	changed.Price = d("40000")
	for i := range f.store.attendance[emp.ID] {
		f.store.attendance[emp.ID][i].PieceWorkRate = &changed
	}

	f.generate(t)
	items := f.store.lineItems(emp.ID, f.period.ID)
	after, found := findItem(items, payroll.PieceWork("rate-1"))
	require.True(t, found)
	assert.Equal(t, before.ID, after.ID)
	assert.True(t, after.Amount.Equal(d("50000")), "piece-work amount is not updated on regeneration")

	count := 0
	for _, item := range items {
		if item.Category.Code == payroll.CategoryPieceWork {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestGeneratePayroll_PrunesStaleItems(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})
	f.store.attendance[emp.ID] = []attendance.Attendance{{Date: date(2025, 1, 6), Status: attendance.StatusAbsent}}

	cfg := payroll.DefaultStatutoryConfig(testCompanyID)
	cfg.Employee.JKK = d("1")
	f.store.configs[testCompanyID] = cfg

	f.generate(t)
	items := f.store.lineItems(emp.ID, f.period.ID)
	_, found := findItem(items, payroll.Statutory(payroll.StatutoryJKK))
	require.True(t, found)
	_, found = findItem(items, payroll.AbsenceDeduction())
	require.True(t, found)

	cfg.Employee.JKK = decimal.Zero
	f.store.configs[testCompanyID] = cfg
	f.store.attendance[emp.ID] = nil

	f.generate(t)
	items = f.store.lineItems(emp.ID, f.period.ID)
	_, found = findItem(items, payroll.Statutory(payroll.StatutoryJKK))
	assert.False(t, found, "zeroed statutory deduction is removed")
	_, found = findItem(items, payroll.AbsenceDeduction())
	assert.False(t, found, "absence deduction is removed once the absence is gone")

	p := f.payrollFor(emp.ID)
	assert.True(t, p.TotalDeduction.Equal(d("120000")), "JHT, JP and JKN remain, got %s", p.TotalDeduction)
}

func TestGeneratePayroll_ClosedPeriodRejected(t *testing.T) {
	f := newFixture(t)
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})

	_, err := f.svc.ClosePeriod(f.ctx, f.period.ID)
	require.NoError(t, err)

	_, err = f.svc.GeneratePayroll(f.ctx, payroll.GeneratePayrollRequest{PeriodID: f.period.ID})
	assert.ErrorIs(t, err, payroll.ErrPeriodClosed)
	assert.Empty(t, f.store.payrolls)
}

func TestGeneratePayroll_PeriodNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GeneratePayroll(f.ctx, payroll.GeneratePayrollRequest{PeriodID: "missing"})
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestGeneratePayroll_NoActiveEmployees(t *testing.T) {
	f := newFixture(t)
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmploymentStatus: employee.EmploymentStatusResigned})

	_, err := f.svc.GeneratePayroll(f.ctx, payroll.GeneratePayrollRequest{PeriodID: f.period.ID})
	assert.ErrorIs(t, err, payroll.ErrNoEmployeesToGenerate)
}

func TestGeneratePayroll_FailureIsolation(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for _, code := range []string{"EMP001", "EMP002", "EMP003", "EMP004"} {
		emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: code, BaseSalary: dp("3000000")})
		ids = append(ids, emp.ID)
	}
	f.store.failReads[ids[1]] = errors.New("connection reset")

	result := f.generate(t)

	assert.Len(t, result.Generated, 3)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, ids[1], result.Failures[0].EmployeeID)
	assert.Contains(t, result.Failures[0].Reason, "connection reset")
	assert.Equal(t, ids[0], result.Generated[0].EmployeeID)
	assert.Equal(t, ids[3], result.Generated[2].EmployeeID)
}

func TestGeneratePayroll_SelectedEmployees(t *testing.T) {
	f := newFixture(t)
	a := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP002", BaseSalary: dp("3000000")})
	resigned := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP003", EmploymentStatus: employee.EmploymentStatusResigned})

	result := f.generate(t, a.ID, resigned.ID, a.ID)

	require.Len(t, result.Generated, 1)
	assert.Equal(t, a.ID, result.Generated[0].EmployeeID)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, resigned.ID, result.Failures[0].EmployeeID)
	assert.Len(t, f.store.payrolls, 1)
}

func TestGeneratePayroll_ReportsClockWarnings(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})
	f.store.attendance[emp.ID] = []attendance.Attendance{
		{Date: date(2025, 1, 6), Status: attendance.StatusPresent, ClockIn: clock(t, "17:00"), ClockOut: clock(t, "08:00")},
	}

	result := f.generate(t)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, emp.ID, result.Warnings[0].EmployeeID)
	_, found := findItem(f.store.lineItems(emp.ID, f.period.ID), payroll.Overtime())
	assert.False(t, found)
}

func TestGeneratePayroll_InvalidConfigValuesFallBack(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})
	f.store.attendance[emp.ID] = []attendance.Attendance{{Date: date(2025, 1, 6), Status: attendance.StatusAbsent}}

	cfg := payroll.DefaultStatutoryConfig(testCompanyID)
	cfg.Employee.JHT = d("-2")
	cfg.WorkingDaysPerMonth = 0
	f.store.configs[testCompanyID] = cfg

	f.generate(t)

	items := f.store.lineItems(emp.ID, f.period.ID)
	_, found := findItem(items, payroll.Statutory(payroll.StatutoryJHT))
	assert.False(t, found, "negative percentage is treated as zero")
	absence, found := findItem(items, payroll.AbsenceDeduction())
	require.True(t, found)
	assert.True(t, absence.Amount.Equal(d("100000")), "working days fall back to 30")
}

func TestGeneratePayroll_CancelledContext(t *testing.T) {
	f := newFixture(t)
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	result, err := f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodID: f.period.ID})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Generated)
	assert.Len(t, result.Failures, 1)
}

func TestGeneratePayrollForCompany_WithoutClaims(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})

	result, err := f.svc.GeneratePayrollForCompany(context.Background(), testCompanyID, payroll.GeneratePayrollRequest{PeriodID: f.period.ID})
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)
	assert.Equal(t, emp.ID, result.Generated[0].EmployeeID)
}

func TestExportPayrollRegister(t *testing.T) {
	f := newFixture(t)
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP002", FullName: "Siti", BaseSalary: dp("5000000")})
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", FullName: "Budi", BaseSalary: dp("3000000")})
	f.generate(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportPayrollRegister(f.ctx, f.period.ID, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "employee_code,employee_name,basic_salary,total_allowance,total_deduction,net_salary,"+
		"tk_jkk_company,tk_jkm_company,tk_jht_company,tk_jp_company,jkn_company", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "EMP001,Budi,3000000,0,120000,2880000,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "EMP002,Siti,5000000,"), lines[2])
}

func TestExportPayrollRegister_UnknownPeriod(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	err := f.svc.ExportPayrollRegister(f.ctx, "missing", &buf)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
	assert.Zero(t, buf.Len())
}

func TestGetPayroll_IncludesLineItems(t *testing.T) {
	f := newFixture(t)
	emp := f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", FullName: "Budi", BaseSalary: dp("3000000"), DefaultAllowance: dp("100000")})
	result := f.generate(t)
	require.Len(t, result.Generated, 1)

	got, err := f.svc.GetPayroll(f.ctx, result.Generated[0].ID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.EmployeeID)
	assert.Equal(t, "Budi", got.EmployeeName)
	require.Len(t, got.Allowances, 1)
	assert.Equal(t, "Tunjangan Tetap", got.Allowances[0].Name)
	assert.Len(t, got.Deductions, 3)

	_, err = f.svc.GetPayroll(authContext(t, "other-company", "user-2"), result.Generated[0].ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}

func TestListPayrolls(t *testing.T) {
	f := newFixture(t)
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP001", BaseSalary: dp("3000000")})
	f.store.addEmployee(employee.Employee{CompanyID: testCompanyID, EmployeeCode: "EMP002", BaseSalary: dp("3000000")})
	f.generate(t)

	got, err := f.svc.ListPayrolls(f.ctx, payroll.PayrollFilter{PeriodID: &f.period.ID, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalCount)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 20, got.Limit)
}

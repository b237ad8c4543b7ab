package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// memoryStore backs every repository the payroll service reads and writes.
type memoryStore struct {
	mu         sync.Mutex
	seq        int
	employees  []employee.Employee
	periods    map[string]payroll.Period
	configs    map[string]payroll.StatutoryConfig
	attendance map[string][]attendance.Attendance
	leaves     map[string][]leave.LeaveRequest
	payrolls   map[string]payroll.Payroll
	items      map[string]storedItem
	failReads  map[string]error
}

type storedItem struct {
	seq  int
	item payroll.LineItem
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		periods:    make(map[string]payroll.Period),
		configs:    make(map[string]payroll.StatutoryConfig),
		attendance: make(map[string][]attendance.Attendance),
		leaves:     make(map[string][]leave.LeaveRequest),
		payrolls:   make(map[string]payroll.Payroll),
		items:      make(map[string]storedItem),
		failReads:  make(map[string]error),
	}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryStore) service(workers int) *PayrollServiceImpl {
	svc := NewPayrollService(
		passthroughTransactor{},
		memoryPeriodRepo{m},
		memoryConfigRepo{m},
		memoryPayrollRepo{m},
		memoryEmployeeRepo{m},
		memoryAttendanceRepo{m},
		memoryLeaveRepo{m},
		workers,
	).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func (m *memoryStore) addPeriod(companyID string, month, year int) payroll.Period {
	p, err := payroll.NewPeriod(companyID, month, year, nil, nil)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID("period")
	m.periods[p.ID] = p
	return p
}

func (m *memoryStore) addEmployee(emp employee.Employee) employee.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	if emp.ID == "" {
		emp.ID = m.nextID("emp")
	}
	if emp.EmploymentStatus == "" {
		emp.EmploymentStatus = employee.EmploymentStatusActive
	}
	m.employees = append(m.employees, emp)
	return emp
}

func (m *memoryStore) lineItems(employeeID, periodID string) []payroll.LineItem {
	items, _ := memoryPayrollRepo{m}.ListLineItems(context.Background(), employeeID, periodID)
	return items
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========== PERIODS ==========

type memoryPeriodRepo struct{ *memoryStore }

func (r memoryPeriodRepo) Create(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.CompanyID == period.CompanyID && p.Month == period.Month && p.Year == period.Year {
			return payroll.Period{}, payroll.ErrPeriodAlreadyExists
		}
	}
	period.ID = r.nextID("period")
	r.periods[period.ID] = period
	return period, nil
}

func (r memoryPeriodRepo) GetByID(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r memoryPeriodRepo) List(ctx context.Context, companyID string, year *int) ([]payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Period
	for _, p := range r.periods {
		if p.CompanyID == companyID && (year == nil || p.Year == *year) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r memoryPeriodRepo) Close(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.periods[period.ID]
	if current.IsClosed {
		return payroll.Period{}, payroll.ErrPeriodAlreadyClosed
	}
	r.periods[period.ID] = period
	return period, nil
}

func (r memoryPeriodRepo) FindOpenCovering(ctx context.Context, companyID string, date time.Time) (payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.CompanyID == companyID && !p.IsClosed && p.Covers(date) {
			return p, nil
		}
	}
	return payroll.Period{}, payroll.ErrPeriodNotFound
}

func (r memoryPeriodRepo) ListOpenCovering(ctx context.Context, date time.Time) ([]payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Period
	for _, p := range r.periods {
		if !p.IsClosed && p.Covers(date) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ========== CONFIG ==========

type memoryConfigRepo struct{ *memoryStore }

func (r memoryConfigRepo) Get(ctx context.Context, companyID string) (payroll.StatutoryConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[companyID]
	if !ok {
		return payroll.StatutoryConfig{}, payroll.ErrConfigNotFound
	}
	return cfg, nil
}

func (r memoryConfigRepo) Upsert(ctx context.Context, cfg payroll.StatutoryConfig) (payroll.StatutoryConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.ID == "" {
		cfg.ID = r.nextID("config")
	}
	r.configs[cfg.CompanyID] = cfg
	return cfg, nil
}

// ========== EMPLOYEES ==========

type memoryEmployeeRepo struct{ *memoryStore }

func (r memoryEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, emp := range r.employees {
		if emp.ID == id && emp.CompanyID == companyID {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r memoryEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.CompanyID == companyID && emp.IsActive() {
			out = append(out, emp)
		}
	}
	return out, nil
}

// ========== ATTENDANCE & LEAVE ==========

type memoryAttendanceRepo struct{ *memoryStore }

func (r memoryAttendanceRepo) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.attendance[att.EmployeeID]
	for i, row := range rows {
		if row.Date.Equal(att.Date) {
			att.ID = row.ID
			rows[i] = att
			return att, nil
		}
	}
	att.ID = r.nextID("att")
	r.attendance[att.EmployeeID] = append(rows, att)
	return att, nil
}

func (r memoryAttendanceRepo) GetByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failReads[employeeID]; err != nil {
		return nil, err
	}
	var out []attendance.Attendance
	for _, row := range r.attendance[employeeID] {
		if !row.Date.Before(from) && !row.Date.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

type memoryLeaveRepo struct{ *memoryStore }

func (r memoryLeaveRepo) GetApprovedNonAnnual(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveRequest
	for _, l := range r.leaves[employeeID] {
		if l.IsUnpaid() && !l.StartDate.After(to) && !l.EndDate.Before(from) {
			out = append(out, l)
		}
	}
	return out, nil
}

// ========== PAYROLL ==========

type memoryPayrollRepo struct{ *memoryStore }

func payrollKey(employeeID, periodID string) string { return employeeID + "|" + periodID }

func (r memoryPayrollRepo) GetOrCreate(ctx context.Context, employeeID, periodID, companyID string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := payrollKey(employeeID, periodID)
	if p, ok := r.payrolls[key]; ok {
		return p, nil
	}
	p := payroll.Payroll{ID: r.nextID("payroll"), EmployeeID: employeeID, PeriodID: periodID, CompanyID: companyID}
	r.payrolls[key] = p
	return p, nil
}

func (r memoryPayrollRepo) Save(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Items = nil
	r.payrolls[payrollKey(p.EmployeeID, p.PeriodID)] = p
	return p, nil
}

func (r memoryPayrollRepo) withEmployee(p payroll.Payroll) payroll.Payroll {
	for _, emp := range r.employees {
		if emp.ID == p.EmployeeID {
			name, code := emp.FullName, emp.EmployeeCode
			p.EmployeeName, p.EmployeeCode = &name, &code
		}
	}
	return p
}

func (r memoryPayrollRepo) GetByID(ctx context.Context, id string, companyID string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payrolls {
		if p.ID == id && p.CompanyID == companyID {
			return r.withEmployee(p), nil
		}
	}
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

func (r memoryPayrollRepo) List(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payroll
	for _, p := range r.payrolls {
		if p.CompanyID != companyID {
			continue
		}
		if filter.PeriodID != nil && p.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, r.withEmployee(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memoryPayrollRepo) ListByPeriod(ctx context.Context, companyID, periodID string) ([]payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payroll
	for _, p := range r.payrolls {
		if p.CompanyID == companyID && p.PeriodID == periodID {
			out = append(out, r.withEmployee(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].EmployeeCode < *out[j].EmployeeCode })
	return out, nil
}

func itemKey(employeeID, periodID string, category payroll.LineItemCategory) string {
	return payrollKey(employeeID, periodID) + "|" + category.Key()
}

func (r memoryPayrollRepo) ListLineItems(ctx context.Context, employeeID, periodID string) ([]payroll.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stored []storedItem
	for _, s := range r.items {
		if s.item.EmployeeID == employeeID && s.item.PeriodID == periodID {
			stored = append(stored, s)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })
	items := make([]payroll.LineItem, 0, len(stored))
	for _, s := range stored {
		items = append(items, s.item)
	}
	return items, nil
}

func (r memoryPayrollRepo) UpsertLineItem(ctx context.Context, item payroll.LineItem) (payroll.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := itemKey(item.EmployeeID, item.PeriodID, item.Category)
	if existing, ok := r.items[key]; ok {
		item.ID = existing.item.ID
		r.items[key] = storedItem{seq: existing.seq, item: item}
		return item, nil
	}
	item.ID = r.nextID("item")
	r.items[key] = storedItem{seq: r.seq, item: item}
	return item, nil
}

func (r memoryPayrollRepo) DeleteLineItems(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	for key, s := range r.items {
		if _, ok := remove[s.item.ID]; ok {
			delete(r.items, key)
		}
	}
	return nil
}

// ========== HELPERS ==========

func authContext(t *testing.T, companyID, userID string) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"company_id": companyID,
		"user_id":    userID,
		"role":       "manager",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func clock(t *testing.T, s string) *attendance.Clock {
	t.Helper()
	c, err := attendance.ParseClock(s)
	require.NoError(t, err)
	return &c
}

func findItem(items []payroll.LineItem, category payroll.LineItemCategory) (payroll.LineItem, bool) {
	for _, item := range items {
		if item.Category == category {
			return item, true
		}
	}
	return payroll.LineItem{}, false
}

package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type PayrollServiceImpl struct {
	transactor     database.Transactor
	periodRepo     payroll.PeriodRepository
	configRepo     payroll.StatutoryConfigRepository
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	workers        int
	now            func() time.Time
}

func NewPayrollService(
	transactor database.Transactor,
	periodRepo payroll.PeriodRepository,
	configRepo payroll.StatutoryConfigRepository,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	workers int,
) payroll.PayrollService {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &PayrollServiceImpl{
		transactor:     transactor,
		periodRepo:     periodRepo,
		configRepo:     configRepo,
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		workers:        workers,
		now:            time.Now,
	}
}

// ========== GENERATION ==========

// GeneratePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	return s.GeneratePayrollForCompany(ctx, claims.CompanyID, req)
}

type employeeOutcome struct {
	scheduled bool
	payroll   payroll.Payroll
	warnings  []payroll.DataWarning
	err       error
}

// GeneratePayrollForCompany implements payroll.PayrollService.
func (s *PayrollServiceImpl) GeneratePayrollForCompany(ctx context.Context, companyID string, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateResult{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, req.PeriodID, companyID)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	if period.IsClosed {
		return payroll.GenerateResult{}, payroll.ErrPeriodClosed
	}

	employees, failures, err := s.selectEmployees(ctx, companyID, req.EmployeeIDs)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	if len(employees) == 0 && len(failures) == 0 {
		return payroll.GenerateResult{}, payroll.ErrNoEmployeesToGenerate
	}

	cfg, err := s.configSnapshot(ctx, companyID)
	if err != nil {
		return payroll.GenerateResult{}, err
	}

	result := payroll.GenerateResult{
		RunID:     uuid.NewString(),
		PeriodID:  period.ID,
		Generated: []payroll.PayrollResponse{},
		Failures:  failures,
		Warnings:  []payroll.DataWarning{},
	}
	logger := slog.With("run_id", result.RunID, "company_id", companyID, "period_id", period.ID)
	logger.Info("Payroll generation started", "employees", len(employees), "workers", s.workers)
	start := time.Now()

	outcomes := make([]employeeOutcome, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range employees {
		if gctx.Err() != nil {
			break
		}
		outcomes[i].scheduled = true
		i := i
		g.Go(func() error {
			p, warnings, err := s.generateForEmployee(gctx, period, cfg, employees[i])
			outcomes[i].payroll, outcomes[i].warnings, outcomes[i].err = p, warnings, err
			// Per-employee failures are reported in the result, never to the group.
			return nil
		})
	}
	_ = g.Wait()

	for i, out := range outcomes {
		emp := employees[i]
		switch {
		case !out.scheduled:
			result.Failures = append(result.Failures, payroll.EmployeeFailure{EmployeeID: emp.ID, Reason: ctx.Err().Error()})
		case out.err != nil:
			logger.Error("Payroll generation failed for employee", "employee_id", emp.ID, "error", out.err)
			result.Failures = append(result.Failures, payroll.EmployeeFailure{EmployeeID: emp.ID, Reason: out.err.Error()})
		default:
			result.Generated = append(result.Generated, toPayrollResponse(out.payroll))
		}
		for _, w := range out.warnings {
			logger.Warn("Payroll data warning", "employee_id", w.EmployeeID, "date", w.Date, "message", w.Message)
		}
		result.Warnings = append(result.Warnings, out.warnings...)
	}

	logger.Info("Payroll generation finished",
		"generated", len(result.Generated),
		"failed", len(result.Failures),
		"warnings", len(result.Warnings),
		"duration", time.Since(start),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("payroll generation interrupted: %w", err)
	}
	return result, nil
}

// selectEmployees resolves the run's employee set; requested ids that are not active become failures.
func (s *PayrollServiceImpl) selectEmployees(ctx context.Context, companyID string, requested []string) ([]employee.Employee, []payroll.EmployeeFailure, error) {
	active, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active employees: %w", err)
	}
	if len(requested) == 0 {
		return active, []payroll.EmployeeFailure{}, nil
	}

	byID := make(map[string]employee.Employee, len(active))
	for _, emp := range active {
		byID[emp.ID] = emp
	}

	var (
		selected []employee.Employee
		failures = []payroll.EmployeeFailure{}
		seen     = make(map[string]struct{}, len(requested))
	)
	for _, id := range requested {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		emp, ok := byID[id]
		if !ok {
			failures = append(failures, payroll.EmployeeFailure{
				EmployeeID: id,
				Reason:     fmt.Sprintf("%s or %s", employee.ErrEmployeeNotFound, employee.ErrEmployeeInactive),
			})
			continue
		}
		selected = append(selected, emp)
	}
	return selected, failures, nil
}

// configSnapshot reads the company config once per run, falling back to defaults.
func (s *PayrollServiceImpl) configSnapshot(ctx context.Context, companyID string) (payroll.StatutoryConfig, error) {
	cfg, err := s.configRepo.Get(ctx, companyID)
	if err != nil {
		if !errors.Is(err, payroll.ErrConfigNotFound) {
			return payroll.StatutoryConfig{}, err
		}
		cfg = payroll.DefaultStatutoryConfig(companyID)
	}

	cfg, replaced := cfg.Sanitize()
	if len(replaced) > 0 {
		slog.Warn("Statutory config has invalid values, using fallbacks", "company_id", companyID, "fields", replaced)
	}
	return cfg, nil
}

// generateForEmployee writes one employee's payroll and line items in a single transaction.
func (s *PayrollServiceImpl) generateForEmployee(ctx context.Context, period payroll.Period, cfg payroll.StatutoryConfig, emp employee.Employee) (payroll.Payroll, []payroll.DataWarning, error) {
	var (
		saved    payroll.Payroll
		warnings []payroll.DataWarning
	)

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payrollRepo.GetOrCreate(ctx, emp.ID, period.ID, period.CompanyID)
		if err != nil {
			return err
		}

		rows, err := s.attendanceRepo.GetByEmployeeBetween(ctx, emp.ID, period.StartDate, period.EndDate, period.CompanyID)
		if err != nil {
			return err
		}
		leaves, err := s.leaveRepo.GetApprovedNonAnnual(ctx, emp.ID, period.StartDate, period.EndDate)
		if err != nil {
			return err
		}

		result := assemble(employeeInputs{employee: emp, attendance: rows, leaves: leaves}, period, cfg)

		existing, err := s.payrollRepo.ListLineItems(ctx, emp.ID, period.ID)
		if err != nil {
			return err
		}
		plan := reconcile(emp.ID, period.ID, existing, result.items)

		if err := s.payrollRepo.DeleteLineItems(ctx, plan.deletes); err != nil {
			return err
		}

		stored := make(map[string]payroll.LineItem, len(result.items))
		for _, item := range plan.kept {
			stored[item.Category.Key()] = item
		}
		for _, item := range plan.upserts {
			upserted, err := s.payrollRepo.UpsertLineItem(ctx, item)
			if err != nil {
				return err
			}
			stored[upserted.Category.Key()] = upserted
		}

		items := make([]payroll.LineItem, 0, len(result.items))
		for _, d := range result.items {
			items = append(items, stored[d.category.Key()])
		}

		p.BasicSalary = result.basicSalary
		p.ApplyTotals(items)
		p.EmployerContributions = result.employer
		generatedAt := s.now()
		p.GeneratedAt = &generatedAt

		saved, err = s.payrollRepo.Save(ctx, p)
		if err != nil {
			return err
		}
		saved.Items = items
		saved.EmployeeName = &emp.FullName
		saved.EmployeeCode = &emp.EmployeeCode
		warnings = result.warnings
		return nil
	})
	if err != nil {
		return payroll.Payroll{}, nil, err
	}

	return saved, warnings, nil
}

// ========== RESULTS ==========

// GetPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	p, err := s.payrollRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	items, err := s.payrollRepo.ListLineItems(ctx, p.EmployeeID, p.PeriodID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	p.Items = items

	return toPayrollResponse(p), nil
}

// ListPayrolls implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}
	filter.Normalize()

	payrolls, total, err := s.payrollRepo.List(ctx, claims.CompanyID, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	data := make([]payroll.PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		data = append(data, toPayrollResponse(p))
	}

	return payroll.ListPayrollResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func toPayrollResponse(p payroll.Payroll) payroll.PayrollResponse {
	resp := payroll.PayrollResponse{
		ID:             p.ID,
		EmployeeID:     p.EmployeeID,
		PeriodID:       p.PeriodID,
		BasicSalary:    p.BasicSalary,
		TotalAllowance: p.TotalAllowance,
		TotalDeduction: p.TotalDeduction,
		NetSalary:      p.NetSalary,
		EmployerContributions: payroll.EmployerContributionsResponse{
			TKJKK: p.EmployerContributions.TKJKK,
			TKJKM: p.EmployerContributions.TKJKM,
			TKJHT: p.EmployerContributions.TKJHT,
			TKJP:  p.EmployerContributions.TKJP,
			JKN:   p.EmployerContributions.JKN,
		},
	}
	if p.EmployeeName != nil {
		resp.EmployeeName = *p.EmployeeName
	}
	if p.EmployeeCode != nil {
		resp.EmployeeCode = *p.EmployeeCode
	}
	if p.GeneratedAt != nil {
		generatedAt := p.GeneratedAt.Format(time.RFC3339)
		resp.GeneratedAt = &generatedAt
	}

	for _, item := range p.Items {
		line := payroll.LineItemResponse{
			ID:       item.ID,
			Kind:     string(item.Kind),
			Category: item.Category.Key(),
			Name:     item.Name,
			Amount:   item.Amount,
		}
		if item.Kind == payroll.KindAllowance {
			resp.Allowances = append(resp.Allowances, line)
		} else {
			resp.Deductions = append(resp.Deductions, line)
		}
	}

	return resp
}

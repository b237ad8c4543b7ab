package payroll

import (
	"context"
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/gocarina/gocsv"
)

// ExportPayrollRegister implements payroll.PayrollService.
// One row per generated payroll in the period, ordered by employee code.
func (s *PayrollServiceImpl) ExportPayrollRegister(ctx context.Context, periodID string, w io.Writer) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.periodRepo.GetByID(ctx, periodID, claims.CompanyID); err != nil {
		return err
	}

	payrolls, err := s.payrollRepo.ListByPeriod(ctx, claims.CompanyID, periodID)
	if err != nil {
		return err
	}

	rows := make([]*payroll.RegisterRow, 0, len(payrolls))
	for _, p := range payrolls {
		rows = append(rows, toRegisterRow(p))
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write payroll register: %w", err)
	}
	return nil
}

func toRegisterRow(p payroll.Payroll) *payroll.RegisterRow {
	row := &payroll.RegisterRow{
		BasicSalary:    p.BasicSalary.String(),
		TotalAllowance: p.TotalAllowance.String(),
		TotalDeduction: p.TotalDeduction.String(),
		NetSalary:      p.NetSalary.String(),
		TKJKKCompany:   p.EmployerContributions.TKJKK.String(),
		TKJKMCompany:   p.EmployerContributions.TKJKM.String(),
		TKJHTCompany:   p.EmployerContributions.TKJHT.String(),
		TKJPCompany:    p.EmployerContributions.TKJP.String(),
		JKNCompany:     p.EmployerContributions.JKN.String(),
	}
	if p.EmployeeCode != nil {
		row.EmployeeCode = *p.EmployeeCode
	}
	if p.EmployeeName != nil {
		row.EmployeeName = *p.EmployeeName
	}
	return row
}

package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// Periods
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, year *int) ([]PeriodResponse, error)
	ClosePeriod(ctx context.Context, id string) (PeriodResponse, error)

	// Statutory config
	GetStatutoryConfig(ctx context.Context) (StatutoryConfigResponse, error)
	UpdateStatutoryConfig(ctx context.Context, req UpdateStatutoryConfigRequest) (StatutoryConfigResponse, error)

	// Generation
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GenerateResult, error)
	GeneratePayrollForCompany(ctx context.Context, companyID string, req GeneratePayrollRequest) (GenerateResult, error)

	// Results
	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	ExportPayrollRegister(ctx context.Context, periodID string, w io.Writer) error
}

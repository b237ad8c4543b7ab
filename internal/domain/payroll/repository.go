package payroll

import (
	"context"
	"time"
)

// PeriodRepository stores payroll periods.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PeriodRepository interface {
	Create(ctx context.Context, period Period) (Period, error)
	GetByID(ctx context.Context, id string, companyID string) (Period, error)
	List(ctx context.Context, companyID string, year *int) ([]Period, error)
	// Close flips is_closed only when the period is still open
	Close(ctx context.Context, period Period) (Period, error)
	FindOpenCovering(ctx context.Context, companyID string, date time.Time) (Period, error)
	// ListOpenCovering spans all companies; used by the scheduled regeneration job
	ListOpenCovering(ctx context.Context, date time.Time) ([]Period, error)
}

type StatutoryConfigRepository interface {
	Get(ctx context.Context, companyID string) (StatutoryConfig, error)
	Upsert(ctx context.Context, config StatutoryConfig) (StatutoryConfig, error)
}

type PayrollRepository interface {
	// Payroll rows
	GetOrCreate(ctx context.Context, employeeID, periodID, companyID string) (Payroll, error)
	Save(ctx context.Context, p Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string, companyID string) (Payroll, error)
	List(ctx context.Context, companyID string, filter PayrollFilter) ([]Payroll, int64, error)
	ListByPeriod(ctx context.Context, companyID, periodID string) ([]Payroll, error)

	// Line items
	ListLineItems(ctx context.Context, employeeID, periodID string) ([]LineItem, error)
	UpsertLineItem(ctx context.Context, item LineItem) (LineItem, error)
	DeleteLineItems(ctx context.Context, ids []string) error
}

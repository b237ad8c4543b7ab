package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

// PayrollJobs keeps draft payrolls of open periods current with attendance
// and leave recorded since the last generation.
type PayrollJobs struct {
	periodRepo     payroll.PeriodRepository
	payrollService payroll.PayrollService
	interval       time.Duration
	now            func() time.Time
}

func NewPayrollJobs(periodRepo payroll.PeriodRepository, payrollService payroll.PayrollService, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{
		periodRepo:     periodRepo,
		payrollService: payrollService,
		interval:       interval,
		now:            time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("regenerate_open_payrolls", j.interval, j.RegenerateOpenPeriods)
}

// RegenerateOpenPeriods regenerates every open period covering today, one
// company at a time. A failing period does not stop the others.
func (j *PayrollJobs) RegenerateOpenPeriods(ctx context.Context) error {
	today := j.now().UTC()

	periods, err := j.periodRepo.ListOpenCovering(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list open periods: %w", err)
	}
	if len(periods) == 0 {
		slog.Debug("Cron: no open payroll periods", "date", today.Format("2006-01-02"))
		return nil
	}

	var failed int
	for _, period := range periods {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result, err := j.payrollService.GeneratePayrollForCompany(ctx, period.CompanyID, payroll.GeneratePayrollRequest{PeriodID: period.ID})
		if err != nil {
			if errors.Is(err, payroll.ErrNoEmployeesToGenerate) {
				continue
			}
			failed++
			slog.Error("Cron: payroll regeneration failed",
				"company_id", period.CompanyID,
				"period_id", period.ID,
				"error", err)
			continue
		}

		slog.Info("Cron: payroll regenerated",
			"company_id", period.CompanyID,
			"period_id", period.ID,
			"run_id", result.RunID,
			"generated", len(result.Generated),
			"failures", len(result.Failures),
			"warnings", len(result.Warnings))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d periods failed to regenerate", failed, len(periods))
	}
	return nil
}

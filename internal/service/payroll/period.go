package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// ========== PERIODS ==========

// CreatePeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	var startDate, endDate *time.Time
	if req.StartDate != nil {
		d, _ := validator.IsValidDate(*req.StartDate)
		startDate = &d
	}
	if req.EndDate != nil {
		d, _ := validator.IsValidDate(*req.EndDate)
		endDate = &d
	}

	period, err := payroll.NewPeriod(claims.CompanyID, req.Month, req.Year, startDate, endDate)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	created, err := s.periodRepo.Create(ctx, period)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return toPeriodResponse(created), nil
}

// GetPeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return toPeriodResponse(period), nil
}

// ListPeriods implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, year *int) ([]payroll.PeriodResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	periods, err := s.periodRepo.List(ctx, claims.CompanyID, year)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		responses = append(responses, toPeriodResponse(p))
	}
	return responses, nil
}

// ClosePeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) ClosePeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	if err := period.Close(claims.UserID, s.now()); err != nil {
		return payroll.PeriodResponse{}, err
	}

	closed, err := s.periodRepo.Close(ctx, period)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return toPeriodResponse(closed), nil
}

func toPeriodResponse(p payroll.Period) payroll.PeriodResponse {
	resp := payroll.PeriodResponse{
		ID:        p.ID,
		Month:     p.Month,
		Year:      p.Year,
		StartDate: p.StartDate.Format("2006-01-02"),
		EndDate:   p.EndDate.Format("2006-01-02"),
		Status:    p.Status(),
		IsClosed:  p.IsClosed,
		ClosedBy:  p.ClosedBy,
	}
	if p.ClosedAt != nil {
		closedAt := p.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closedAt
	}
	return resp
}

// ========== STATUTORY CONFIG ==========

// GetStatutoryConfig implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetStatutoryConfig(ctx context.Context) (payroll.StatutoryConfigResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.StatutoryConfigResponse{}, err
	}

	cfg, err := s.configRepo.Get(ctx, claims.CompanyID)
	if err != nil {
		if errors.Is(err, payroll.ErrConfigNotFound) {
			return toConfigResponse(payroll.DefaultStatutoryConfig(claims.CompanyID), true), nil
		}
		return payroll.StatutoryConfigResponse{}, err
	}

	return toConfigResponse(cfg, false), nil
}

// UpdateStatutoryConfig implements payroll.PayrollService.
func (s *PayrollServiceImpl) UpdateStatutoryConfig(ctx context.Context, req payroll.UpdateStatutoryConfigRequest) (payroll.StatutoryConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.StatutoryConfigResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.StatutoryConfigResponse{}, err
	}

	current, err := s.configRepo.Get(ctx, claims.CompanyID)
	if err != nil {
		if !errors.Is(err, payroll.ErrConfigNotFound) {
			return payroll.StatutoryConfigResponse{}, err
		}
		current = payroll.DefaultStatutoryConfig(claims.CompanyID)
	}

	req.Employee.ApplyTo(&current.Employee)
	req.Employer.ApplyTo(&current.Employer)
	if req.WorkingDaysPerMonth != nil {
		current.WorkingDaysPerMonth = *req.WorkingDaysPerMonth
	}
	if req.OvertimeRate != nil {
		current.OvertimeRate = *req.OvertimeRate
	}
	if claims.UserID != "" {
		current.UpdatedBy = &claims.UserID
	}

	saved, err := s.configRepo.Upsert(ctx, current)
	if err != nil {
		return payroll.StatutoryConfigResponse{}, err
	}

	return toConfigResponse(saved, false), nil
}

func toRatesDTO(r payroll.ContributionRates) payroll.ContributionRatesDTO {
	return payroll.ContributionRatesDTO{JKK: r.JKK, JKM: r.JKM, JHT: r.JHT, JP: r.JP, JKN: r.JKN}
}

func toConfigResponse(cfg payroll.StatutoryConfig, isDefault bool) payroll.StatutoryConfigResponse {
	return payroll.StatutoryConfigResponse{
		ID:                  cfg.ID,
		CompanyID:           cfg.CompanyID,
		Employee:            toRatesDTO(cfg.Employee),
		Employer:            toRatesDTO(cfg.Employer),
		WorkingDaysPerMonth: cfg.WorkingDaysPerMonth,
		OvertimeRate:        cfg.OvertimeRate,
		IsDefault:           isDefault,
	}
}

package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type statutoryConfigRepository struct {
	db *database.DB
}

func NewStatutoryConfigRepository(db *database.DB) payroll.StatutoryConfigRepository {
	return &statutoryConfigRepository{db: db}
}

const statutoryConfigColumns = `
	id, company_id,
	emp_jkk_pct, emp_jkm_pct, emp_jht_pct, emp_jp_pct, emp_jkn_pct,
	comp_jkk_pct, comp_jkm_pct, comp_jht_pct, comp_jp_pct, comp_jkn_pct,
	working_days_per_month, overtime_rate, updated_by, created_at, updated_at
`

// nullableRates receives percentage columns that may be NULL; NULL reads as zero.
type nullableRates struct {
	JKK, JKM, JHT, JP, JKN decimal.NullDecimal
}

func (n nullableRates) rates() payroll.ContributionRates {
	return payroll.ContributionRates{
		JKK: n.JKK.Decimal,
		JKM: n.JKM.Decimal,
		JHT: n.JHT.Decimal,
		JP:  n.JP.Decimal,
		JKN: n.JKN.Decimal,
	}
}

func scanStatutoryConfig(row pgx.Row) (payroll.StatutoryConfig, error) {
	var (
		cfg          payroll.StatutoryConfig
		emp, comp    nullableRates
		workingDays  *int
		overtimeRate decimal.NullDecimal
	)
	err := row.Scan(
		&cfg.ID, &cfg.CompanyID,
		&emp.JKK, &emp.JKM, &emp.JHT, &emp.JP, &emp.JKN,
		&comp.JKK, &comp.JKM, &comp.JHT, &comp.JP, &comp.JKN,
		&workingDays, &overtimeRate, &cfg.UpdatedBy, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return payroll.StatutoryConfig{}, err
	}
	cfg.Employee = emp.rates()
	cfg.Employer = comp.rates()
	if workingDays != nil {
		cfg.WorkingDaysPerMonth = *workingDays
	}
	cfg.OvertimeRate = overtimeRate.Decimal
	return cfg, nil
}

// Get implements payroll.StatutoryConfigRepository.
func (r *statutoryConfigRepository) Get(ctx context.Context, companyID string) (payroll.StatutoryConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + statutoryConfigColumns + ` FROM statutory_configs WHERE company_id = $1`

	cfg, err := scanStatutoryConfig(q.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.StatutoryConfig{}, payroll.ErrConfigNotFound
		}
		return payroll.StatutoryConfig{}, fmt.Errorf("failed to get statutory config: %w", err)
	}

	return cfg, nil
}

// Upsert implements payroll.StatutoryConfigRepository.
func (r *statutoryConfigRepository) Upsert(ctx context.Context, cfg payroll.StatutoryConfig) (payroll.StatutoryConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO statutory_configs (
			company_id,
			emp_jkk_pct, emp_jkm_pct, emp_jht_pct, emp_jp_pct, emp_jkn_pct,
			comp_jkk_pct, comp_jkm_pct, comp_jht_pct, comp_jp_pct, comp_jkn_pct,
			working_days_per_month, overtime_rate, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (company_id) DO UPDATE SET
			emp_jkk_pct = EXCLUDED.emp_jkk_pct,
			emp_jkm_pct = EXCLUDED.emp_jkm_pct,
			emp_jht_pct = EXCLUDED.emp_jht_pct,
			emp_jp_pct = EXCLUDED.emp_jp_pct,
			emp_jkn_pct = EXCLUDED.emp_jkn_pct,
			comp_jkk_pct = EXCLUDED.comp_jkk_pct,
			comp_jkm_pct = EXCLUDED.comp_jkm_pct,
			comp_jht_pct = EXCLUDED.comp_jht_pct,
			comp_jp_pct = EXCLUDED.comp_jp_pct,
			comp_jkn_pct = EXCLUDED.comp_jkn_pct,
			working_days_per_month = EXCLUDED.working_days_per_month,
			overtime_rate = EXCLUDED.overtime_rate,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING ` + statutoryConfigColumns

	emp, comp := cfg.Employee, cfg.Employer
	saved, err := scanStatutoryConfig(q.QueryRow(ctx, query,
		cfg.CompanyID,
		emp.JKK, emp.JKM, emp.JHT, emp.JP, emp.JKN,
		comp.JKK, comp.JKM, comp.JHT, comp.JP, comp.JKN,
		cfg.WorkingDaysPerMonth, cfg.OvertimeRate, cfg.UpdatedBy,
	))
	if err != nil {
		return payroll.StatutoryConfig{}, fmt.Errorf("failed to upsert statutory config: %w", err)
	}

	return saved, nil
}

package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepository{db: db}
}

const periodColumns = `
	id, company_id, month, year, start_date, end_date, is_closed, closed_at, closed_by, created_at, updated_at
`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Month, &p.Year, &p.StartDate, &p.EndDate,
		&p.IsClosed, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func collectPeriods(rows pgx.Rows) ([]payroll.Period, error) {
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payroll periods: %w", err)
	}
	return periods, nil
}

// Create implements payroll.PeriodRepository.
func (r *periodRepository) Create(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (company_id, month, year, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.CompanyID, period.Month, period.Year, period.StartDate, period.EndDate,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return payroll.Period{}, payroll.ErrPeriodAlreadyExists
		}
		return payroll.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return created, nil
}

// GetByID implements payroll.PeriodRepository.
func (r *periodRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1 AND company_id = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

// List implements payroll.PeriodRepository.
func (r *periodRepository) List(ctx context.Context, companyID string, year *int) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE company_id = $1 AND ($2::int IS NULL OR year = $2)
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}

	return collectPeriods(rows)
}

// Close implements payroll.PeriodRepository.
func (r *periodRepository) Close(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET is_closed = TRUE, closed_at = $3, closed_by = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND is_closed = FALSE
		RETURNING ` + periodColumns

	closed, err := scanPeriod(q.QueryRow(ctx, query, period.ID, period.CompanyID, period.ClosedAt, period.ClosedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodAlreadyClosed
		}
		return payroll.Period{}, fmt.Errorf("failed to close payroll period: %w", err)
	}

	return closed, nil
}

// FindOpenCovering implements payroll.PeriodRepository.
func (r *periodRepository) FindOpenCovering(ctx context.Context, companyID string, date time.Time) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE company_id = $1 AND is_closed = FALSE AND $2::date BETWEEN start_date AND end_date
		ORDER BY start_date DESC
		LIMIT 1
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, companyID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to find open payroll period: %w", err)
	}

	return p, nil
}

// ListOpenCovering implements payroll.PeriodRepository.
func (r *periodRepository) ListOpenCovering(ctx context.Context, date time.Time) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE is_closed = FALSE AND $1::date BETWEEN start_date AND end_date
		ORDER BY company_id
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open payroll periods: %w", err)
	}

	return collectPeriods(rows)
}

package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollColumns = `
	pr.id, pr.employee_id, pr.company_id, pr.period_id, pr.basic_salary,
	pr.total_allowance, pr.total_deduction, pr.net_salary,
	pr.tk_jkk_company, pr.tk_jkm_company, pr.tk_jht_company, pr.tk_jp_company, pr.jkn_company,
	pr.generated_at, pr.created_at, pr.updated_at
`

func payrollScanTargets(p *payroll.Payroll) []any {
	ec := &p.EmployerContributions
	return []any{
		&p.ID, &p.EmployeeID, &p.CompanyID, &p.PeriodID, &p.BasicSalary,
		&p.TotalAllowance, &p.TotalDeduction, &p.NetSalary,
		&ec.TKJKK, &ec.TKJKM, &ec.TKJHT, &ec.TKJP, &ec.JKN,
		&p.GeneratedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanPayrollWithEmployee(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	targets := append(payrollScanTargets(&p), &p.EmployeeName, &p.EmployeeCode)
	err := row.Scan(targets...)
	return p, err
}

// ========== PAYROLL ROWS ==========

// GetOrCreate implements payroll.PayrollRepository.
// The conflict branch takes a row lock, so concurrent runs for one employee serialize here.
func (r *payrollRepository) GetOrCreate(ctx context.Context, employeeID, periodID, companyID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payrolls AS pr (employee_id, period_id, company_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, period_id) DO UPDATE SET employee_id = EXCLUDED.employee_id
		RETURNING ` + payrollColumns

	var p payroll.Payroll
	if err := q.QueryRow(ctx, query, employeeID, periodID, companyID).Scan(payrollScanTargets(&p)...); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to get or create payroll: %w", err)
	}

	return p, nil
}

// Save implements payroll.PayrollRepository.
func (r *payrollRepository) Save(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls AS pr SET
			basic_salary = $3,
			total_allowance = $4,
			total_deduction = $5,
			net_salary = $6,
			tk_jkk_company = $7,
			tk_jkm_company = $8,
			tk_jht_company = $9,
			tk_jp_company = $10,
			jkn_company = $11,
			generated_at = $12,
			updated_at = NOW()
		WHERE pr.id = $1 AND pr.company_id = $2
		RETURNING ` + payrollColumns

	ec := p.EmployerContributions
	var saved payroll.Payroll
	err := q.QueryRow(ctx, query,
		p.ID, p.CompanyID, p.BasicSalary, p.TotalAllowance, p.TotalDeduction, p.NetSalary,
		ec.TKJKK, ec.TKJKM, ec.TKJHT, ec.TKJP, ec.JKN, p.GeneratedAt,
	).Scan(payrollScanTargets(&saved)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to save payroll: %w", err)
	}
	saved.Items = p.Items

	return saved, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.employee_code
		FROM payrolls pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1 AND pr.company_id = $2
	`

	p, err := scanPayrollWithEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}

	return p, nil
}

// List implements payroll.PayrollRepository.
func (r *payrollRepository) List(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payrolls pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodID != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_id = $%d", argIdx)
		args = append(args, *filter.PeriodID)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	// Sort
	allowedColumns := map[string]string{
		"created_at":    "pr.created_at",
		"employee_name": "e.full_name",
		"net_salary":    "pr.net_salary",
		"basic_salary":  "pr.basic_salary",
	}
	sortColumn, ok := allowedColumns[filter.SortBy]
	if !ok {
		sortColumn = "pr.created_at"
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name, e.employee_code
		%s
		ORDER BY %s %s, pr.id
		LIMIT $%d OFFSET $%d
	`, payrollColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayrollWithEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payrolls: %w", err)
	}

	return payrolls, totalCount, nil
}

// ListByPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) ListByPeriod(ctx context.Context, companyID, periodID string) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.employee_code
		FROM payrolls pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.company_id = $1 AND pr.period_id = $2
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, companyID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls by period: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayrollWithEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payrolls: %w", err)
	}

	return payrolls, nil
}

// ========== LINE ITEMS ==========

const lineItemColumns = `
	id, employee_id, period_id, kind, category, name, amount, created_at, updated_at
`

func scanLineItem(row pgx.Row) (payroll.LineItem, error) {
	var (
		item     payroll.LineItem
		category string
	)
	if err := row.Scan(
		&item.ID, &item.EmployeeID, &item.PeriodID, &item.Kind, &category,
		&item.Name, &item.Amount, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return payroll.LineItem{}, err
	}
	parsed, err := payroll.ParseCategoryKey(category)
	if err != nil {
		return payroll.LineItem{}, err
	}
	item.Category = parsed
	return item, nil
}

// ListLineItems implements payroll.PayrollRepository.
func (r *payrollRepository) ListLineItems(ctx context.Context, employeeID, periodID string) ([]payroll.LineItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + lineItemColumns + `
		FROM payroll_line_items
		WHERE employee_id = $1 AND period_id = $2
		ORDER BY kind, created_at, category
	`

	rows, err := q.Query(ctx, query, employeeID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []payroll.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// UpsertLineItem implements payroll.PayrollRepository.
func (r *payrollRepository) UpsertLineItem(ctx context.Context, item payroll.LineItem) (payroll.LineItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_line_items (employee_id, period_id, kind, category, name, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, period_id, category) DO UPDATE SET
			kind = EXCLUDED.kind,
			name = EXCLUDED.name,
			amount = EXCLUDED.amount,
			updated_at = NOW()
		RETURNING ` + lineItemColumns

	saved, err := scanLineItem(q.QueryRow(ctx, query,
		item.EmployeeID, item.PeriodID, item.Kind, item.Category.Key(), item.Name, item.Amount,
	))
	if err != nil {
		return payroll.LineItem{}, fmt.Errorf("failed to upsert line item %s: %w", item.Category, err)
	}

	return saved, nil
}

// DeleteLineItems implements payroll.PayrollRepository.
func (r *payrollRepository) DeleteLineItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_line_items WHERE id = ANY($1::uuid[])`, ids); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}

	return nil
}

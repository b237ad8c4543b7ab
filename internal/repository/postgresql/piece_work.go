package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type pieceWorkRateRepository struct {
	db *database.DB
}

func NewPieceWorkRateRepository(db *database.DB) attendance.PieceWorkRateRepository {
	return &pieceWorkRateRepository{db: db}
}

// GetByID implements attendance.PieceWorkRateRepository.
func (r *pieceWorkRateRepository) GetByID(ctx context.Context, id string, employeeID string) (attendance.PieceWorkRate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, task_name, unit, price, created_at, updated_at
		FROM piece_work_rates
		WHERE id = $1 AND employee_id = $2
	`

	var rate attendance.PieceWorkRate
	err := q.QueryRow(ctx, query, id, employeeID).Scan(
		&rate.ID, &rate.EmployeeID, &rate.TaskName, &rate.Unit, &rate.Price, &rate.CreatedAt, &rate.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.PieceWorkRate{}, attendance.ErrPieceWorkRateNotFound
		}
		return attendance.PieceWorkRate{}, fmt.Errorf("failed to get piece-work rate: %w", err)
	}

	return rate, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic/internal/domain"
)

const leaveColumns = `id, doctor_id, start_date, end_date, status, reason, created_at, updated_at`

type LeaveRepo struct {
	db *pgxpool.Pool
}

func NewLeaveRepository(db *pgxpool.Pool) *LeaveRepo {
	return &LeaveRepo{db: db}
}

func (r *LeaveRepo) Create(ctx context.Context, leave domain.LeavePeriod) (int64, error) {
	var id int64

	query := `
		INSERT INTO leave_periods (doctor_id, start_date, end_date, status, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		leave.DoctorID,
		leave.StartDate,
		leave.EndDate,
		leave.Status,
		leave.Reason,
		leave.CreatedAt,
		leave.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания отпуска: %w", err)
	}

	return id, nil
}

func (r *LeaveRepo) GetByID(ctx context.Context, id int64) (*domain.LeavePeriod, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_periods WHERE id = $1`

	leave, err := scanLeave(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("отпуск с ID %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения отпуска: %w", err)
	}

	return leave, nil
}

func (r *LeaveRepo) UpdateStatus(ctx context.Context, id int64, status domain.LeaveStatus) error {
	query := `UPDATE leave_periods SET status = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса отпуска: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("отпуск с ID %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *LeaveRepo) List(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeavePeriod, error) {
	conditions := []string{"doctor_id = $1"}
	args := []interface{}{filter.DoctorID}
	argCount := 2

	// overlap with the requested window
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", argCount))
		args = append(args, *filter.To)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	query := `SELECT ` + leaveColumns + ` FROM leave_periods WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY start_date, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отпусков: %w", err)
	}
	defer rows.Close()

	leaves := make([]domain.LeavePeriod, 0)
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования отпуска: %w", err)
		}
		leaves = append(leaves, *leave)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return leaves, nil
}

func scanLeave(row pgx.Row) (*domain.LeavePeriod, error) {
	var leave domain.LeavePeriod

	err := row.Scan(
		&leave.ID,
		&leave.DoctorID,
		&leave.StartDate,
		&leave.EndDate,
		&leave.Status,
		&leave.Reason,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &leave, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic/internal/domain"
)

const scheduleRuleColumns = `id, doctor_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), active, created_at, updated_at`

type ScheduleRuleRepo struct {
	db *pgxpool.Pool
}

func NewScheduleRuleRepository(db *pgxpool.Pool) *ScheduleRuleRepo {
	return &ScheduleRuleRepo{db: db}
}

func (r *ScheduleRuleRepo) Create(ctx context.Context, rule domain.WeeklyScheduleRule) (int64, error) {
	var id int64

	query := `
		INSERT INTO schedule_rules (
			doctor_id, day_of_week, start_time, end_time, active, created_at, updated_at
		) VALUES ($1, $2, $3::time, $4::time, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		rule.DoctorID,
		rule.DayOfWeek,
		rule.StartTime.String(),
		rule.EndTime.String(),
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания правила расписания: %w", err)
	}

	return id, nil
}

func (r *ScheduleRuleRepo) GetByID(ctx context.Context, id int64) (*domain.WeeklyScheduleRule, error) {
	query := `SELECT ` + scheduleRuleColumns + ` FROM schedule_rules WHERE id = $1`

	rule, err := scanScheduleRule(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("правило расписания с ID %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения правила расписания: %w", err)
	}

	return rule, nil
}

func (r *ScheduleRuleRepo) Update(ctx context.Context, rule domain.WeeklyScheduleRule) error {
	query := `
		UPDATE schedule_rules
		SET start_time = $1::time, end_time = $2::time, active = $3, updated_at = $4
		WHERE id = $5
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		rule.StartTime.String(),
		rule.EndTime.String(),
		rule.Active,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления правила расписания: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("правило расписания с ID %d: %w", rule.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *ScheduleRuleRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM schedule_rules WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления правила расписания: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("правило расписания с ID %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *ScheduleRuleRepo) ListByDoctor(ctx context.Context, doctorID int64, weekday *int) ([]domain.WeeklyScheduleRule, error) {
	query := `SELECT ` + scheduleRuleColumns + ` FROM schedule_rules WHERE doctor_id = $1`
	args := []interface{}{doctorID}

	if weekday != nil {
		query += ` AND day_of_week = $2`
		args = append(args, *weekday)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения правил расписания: %w", err)
	}
	defer rows.Close()

	rules := make([]domain.WeeklyScheduleRule, 0)
	for rows.Next() {
		rule, err := scanScheduleRule(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования правила расписания: %w", err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return rules, nil
}

func scanScheduleRule(row pgx.Row) (*domain.WeeklyScheduleRule, error) {
	var rule domain.WeeklyScheduleRule
	var start, end string

	err := row.Scan(
		&rule.ID,
		&rule.DoctorID,
		&rule.DayOfWeek,
		&start,
		&end,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rule.StartTime, err = domain.ParseClockTime(start); err != nil {
		return nil, err
	}
	if rule.EndTime, err = domain.ParseClockTime(end); err != nil {
		return nil, err
	}

	return &rule, nil
}

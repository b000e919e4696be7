package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic/internal/domain"
)

// uniqueViolation is the SQLSTATE raised by appointments_active_slot_key.
const uniqueViolation = "23505"

const appointmentColumns = `id, doctor_id, patient_id, date, to_char(time, 'HH24:MI'), duration_minutes, status, booked_by, booked_at, payment_status, cancelled_by, updated_at`

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Insert(ctx context.Context, a domain.Appointment) (*domain.Appointment, error) {
	query := `
		INSERT INTO appointments (doctor_id, patient_id, date, time, duration_minutes, status, booked_by, booked_at, payment_status, updated_at)
		VALUES ($1, $2, $3, $4::time, $5, $6, $7, $8, $9, $8)
		RETURNING ` + appointmentColumns

	created, err := scanAppointment(r.db.QueryRow(ctx, query,
		a.DoctorID,
		a.PatientID,
		a.Date,
		a.Time.String(),
		a.DurationMinutes,
		a.Status,
		a.BookedBy,
		a.BookedAt,
		a.PaymentStatus,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrSlotConflict
		}
		return nil, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	return created, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запись на прием с ID %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, actor int64) error {
	var cancelledBy *int64
	if to == domain.AppointmentStatusCancelled {
		cancelledBy = &actor
	}

	query := `
		UPDATE appointments
		SET status = $1, cancelled_by = COALESCE($2::bigint, cancelled_by), updated_at = $3
		WHERE id = $4 AND status = $5
	`

	tag, err := r.db.Exec(ctx, query, to, cancelledBy, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("запись %d больше не в статусе %s: %w", id, from, domain.ErrInvalidTransition)
	}

	return nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	where, args := appointmentConditions(filter)

	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where + ` ORDER BY date, time, id`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования результатов: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	where, args := appointmentConditions(filter)

	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return count, nil
}

func appointmentConditions(filter domain.AppointmentFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.DoctorID != nil {
		conditions = append(conditions, fmt.Sprintf("doctor_id = $%d", argCount))
		args = append(args, *filter.DoctorID)
		argCount++
	}

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argCount))
		args = append(args, statuses)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	var clock string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Date,
		&clock,
		&a.DurationMinutes,
		&a.Status,
		&a.BookedBy,
		&a.BookedAt,
		&a.PaymentStatus,
		&a.CancelledBy,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.Time, err = domain.ParseClockTime(clock); err != nil {
		return nil, err
	}

	return &a, nil
}

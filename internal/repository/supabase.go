package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"clinic/internal/domain"
)

// NewSupabaseRepositories serves the same tables through the Supabase REST
// gateway instead of a direct Postgres pool.
func NewSupabaseRepositories(client *supa.Client) *Repositories {
	return &Repositories{
		ScheduleRule: &SupabaseScheduleRuleRepo{client: client},
		Leave:        &SupabaseLeaveRepo{client: client},
		Appointment:  &SupabaseAppointmentRepo{client: client},
	}
}

var ascending = &postgrest.OrderOpts{Ascending: true}

func id64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// isConflict recognises the unique violation that PostgREST relays as 409.
func isConflict(err error) bool {
	return err != nil && (strings.Contains(err.Error(), uniqueViolation) || strings.Contains(err.Error(), "409"))
}

type scheduleRuleRow struct {
	ID        int64     `json:"id,omitempty"`
	DoctorID  int64     `json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (row scheduleRuleRow) toDomain() (domain.WeeklyScheduleRule, error) {
	start, err := domain.ParseClockTime(row.StartTime)
	if err != nil {
		return domain.WeeklyScheduleRule{}, err
	}
	end, err := domain.ParseClockTime(row.EndTime)
	if err != nil {
		return domain.WeeklyScheduleRule{}, err
	}
	return domain.WeeklyScheduleRule{
		ID:        row.ID,
		DoctorID:  row.DoctorID,
		DayOfWeek: row.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

type SupabaseScheduleRuleRepo struct {
	client *supa.Client
}

func (r *SupabaseScheduleRuleRepo) Create(_ context.Context, rule domain.WeeklyScheduleRule) (int64, error) {
	row := scheduleRuleRow{
		DoctorID:  rule.DoctorID,
		DayOfWeek: rule.DayOfWeek,
		StartTime: rule.StartTime.String(),
		EndTime:   rule.EndTime.String(),
		Active:    rule.Active,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}

	data, _, err := r.client.From("schedule_rules").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return 0, fmt.Errorf("ошибка создания правила расписания: %w", err)
	}

	var created []scheduleRuleRow
	if err := json.Unmarshal(data, &created); err != nil || len(created) == 0 {
		return 0, fmt.Errorf("ошибка чтения созданного правила расписания: %v", err)
	}

	return created[0].ID, nil
}

func (r *SupabaseScheduleRuleRepo) GetByID(_ context.Context, id int64) (*domain.WeeklyScheduleRule, error) {
	data, _, err := r.client.From("schedule_rules").
		Select("*", "", false).
		Eq("id", id64(id)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения правила расписания: %w", err)
	}

	var rows []scheduleRuleRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка разбора правила расписания: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("правило расписания с ID %d: %w", id, domain.ErrNotFound)
	}

	rule, err := rows[0].toDomain()
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *SupabaseScheduleRuleRepo) Update(_ context.Context, rule domain.WeeklyScheduleRule) error {
	patch := map[string]interface{}{
		"start_time": rule.StartTime.String(),
		"end_time":   rule.EndTime.String(),
		"active":     rule.Active,
		"updated_at": rule.UpdatedAt,
	}

	data, _, err := r.client.From("schedule_rules").
		Update(patch, "representation", "").
		Eq("id", id64(rule.ID)).
		Execute()
	if err != nil {
		return fmt.Errorf("ошибка обновления правила расписания: %w", err)
	}

	return expectRows(data, fmt.Sprintf("правило расписания с ID %d", rule.ID), domain.ErrNotFound)
}

func (r *SupabaseScheduleRuleRepo) Delete(_ context.Context, id int64) error {
	data, _, err := r.client.From("schedule_rules").
		Delete("representation", "").
		Eq("id", id64(id)).
		Execute()
	if err != nil {
		return fmt.Errorf("ошибка удаления правила расписания: %w", err)
	}

	return expectRows(data, fmt.Sprintf("правило расписания с ID %d", id), domain.ErrNotFound)
}

func (r *SupabaseScheduleRuleRepo) ListByDoctor(_ context.Context, doctorID int64, weekday *int) ([]domain.WeeklyScheduleRule, error) {
	query := r.client.From("schedule_rules").
		Select("*", "", false).
		Eq("doctor_id", id64(doctorID))

	if weekday != nil {
		query = query.Eq("day_of_week", strconv.Itoa(*weekday))
	}

	data, _, err := query.Order("id", ascending).Execute()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения правил расписания: %w", err)
	}

	var rows []scheduleRuleRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка разбора правил расписания: %w", err)
	}

	rules := make([]domain.WeeklyScheduleRule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

type leaveRow struct {
	ID        int64              `json:"id,omitempty"`
	DoctorID  int64              `json:"doctor_id"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Status    domain.LeaveStatus `json:"status"`
	Reason    string             `json:"reason"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (row leaveRow) toDomain() (domain.LeavePeriod, error) {
	start, err := domain.ParseDate(row.StartDate)
	if err != nil {
		return domain.LeavePeriod{}, err
	}
	end, err := domain.ParseDate(row.EndDate)
	if err != nil {
		return domain.LeavePeriod{}, err
	}
	return domain.LeavePeriod{
		ID:        row.ID,
		DoctorID:  row.DoctorID,
		StartDate: start,
		EndDate:   end,
		Status:    row.Status,
		Reason:    row.Reason,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

type SupabaseLeaveRepo struct {
	client *supa.Client
}

func (r *SupabaseLeaveRepo) Create(_ context.Context, leave domain.LeavePeriod) (int64, error) {
	row := leaveRow{
		DoctorID:  leave.DoctorID,
		StartDate: leave.StartDate.Format(domain.DateLayout),
		EndDate:   leave.EndDate.Format(domain.DateLayout),
		Status:    leave.Status,
		Reason:    leave.Reason,
		CreatedAt: leave.CreatedAt,
		UpdatedAt: leave.UpdatedAt,
	}

	data, _, err := r.client.From("leave_periods").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return 0, fmt.Errorf("ошибка создания отпуска: %w", err)
	}

	var created []leaveRow
	if err := json.Unmarshal(data, &created); err != nil || len(created) == 0 {
		return 0, fmt.Errorf("ошибка чтения созданного отпуска: %v", err)
	}

	return created[0].ID, nil
}

func (r *SupabaseLeaveRepo) GetByID(_ context.Context, id int64) (*domain.LeavePeriod, error) {
	data, _, err := r.client.From("leave_periods").
		Select("*", "", false).
		Eq("id", id64(id)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отпуска: %w", err)
	}

	var rows []leaveRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка разбора отпуска: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("отпуск с ID %d: %w", id, domain.ErrNotFound)
	}

	leave, err := rows[0].toDomain()
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *SupabaseLeaveRepo) UpdateStatus(_ context.Context, id int64, status domain.LeaveStatus) error {
	patch := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	data, _, err := r.client.From("leave_periods").
		Update(patch, "representation", "").
		Eq("id", id64(id)).
		Execute()
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса отпуска: %w", err)
	}

	return expectRows(data, fmt.Sprintf("отпуск с ID %d", id), domain.ErrNotFound)
}

func (r *SupabaseLeaveRepo) List(_ context.Context, filter domain.LeaveFilter) ([]domain.LeavePeriod, error) {
	query := r.client.From("leave_periods").
		Select("*", "", false).
		Eq("doctor_id", id64(filter.DoctorID))

	if filter.From != nil {
		query = query.Gte("end_date", filter.From.Format(domain.DateLayout))
	}
	if filter.To != nil {
		query = query.Lte("start_date", filter.To.Format(domain.DateLayout))
	}
	if filter.Status != nil {
		query = query.Eq("status", string(*filter.Status))
	}

	data, _, err := query.Order("start_date", ascending).Execute()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отпусков: %w", err)
	}

	var rows []leaveRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка разбора отпусков: %w", err)
	}

	leaves := make([]domain.LeavePeriod, 0, len(rows))
	for _, row := range rows {
		leave, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leave)
	}

	return leaves, nil
}

type appointmentRow struct {
	ID              int64                    `json:"id,omitempty"`
	DoctorID        int64                    `json:"doctor_id"`
	PatientID       int64                    `json:"patient_id"`
	Date            string                   `json:"date"`
	Time            string                   `json:"time"`
	DurationMinutes int                      `json:"duration_minutes"`
	Status          domain.AppointmentStatus `json:"status"`
	BookedBy        int64                    `json:"booked_by"`
	BookedAt        time.Time                `json:"booked_at"`
	PaymentStatus   domain.PaymentStatus     `json:"payment_status"`
	CancelledBy     *int64                   `json:"cancelled_by,omitempty"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func (row appointmentRow) toDomain() (domain.Appointment, error) {
	date, err := domain.ParseDate(row.Date)
	if err != nil {
		return domain.Appointment{}, err
	}
	clock, err := domain.ParseClockTime(row.Time)
	if err != nil {
		return domain.Appointment{}, err
	}
	return domain.Appointment{
		ID:              row.ID,
		DoctorID:        row.DoctorID,
		PatientID:       row.PatientID,
		Date:            date,
		Time:            clock,
		DurationMinutes: row.DurationMinutes,
		Status:          row.Status,
		BookedBy:        row.BookedBy,
		BookedAt:        row.BookedAt,
		PaymentStatus:   row.PaymentStatus,
		CancelledBy:     row.CancelledBy,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

type SupabaseAppointmentRepo struct {
	client *supa.Client
}

func (r *SupabaseAppointmentRepo) Insert(_ context.Context, a domain.Appointment) (*domain.Appointment, error) {
	row := appointmentRow{
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		Date:            a.Date.Format(domain.DateLayout),
		Time:            a.Time.String(),
		DurationMinutes: a.DurationMinutes,
		Status:          a.Status,
		BookedBy:        a.BookedBy,
		BookedAt:        a.BookedAt,
		PaymentStatus:   a.PaymentStatus,
		UpdatedAt:       a.BookedAt,
	}

	data, _, err := r.client.From("appointments").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		if isConflict(err) {
			return nil, domain.ErrSlotConflict
		}
		return nil, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	appointments, err := decodeAppointments(data)
	if err != nil {
		return nil, err
	}
	if len(appointments) == 0 {
		return nil, fmt.Errorf("сервер не вернул созданную запись")
	}

	return &appointments[0], nil
}

func (r *SupabaseAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	data, _, err := r.client.From("appointments").
		Select("*", "", false).
		Eq("id", id64(id)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	appointments, err := decodeAppointments(data)
	if err != nil {
		return nil, err
	}
	if len(appointments) == 0 {
		return nil, fmt.Errorf("запись на прием с ID %d: %w", id, domain.ErrNotFound)
	}

	return &appointments[0], nil
}

func (r *SupabaseAppointmentRepo) UpdateStatus(_ context.Context, id int64, from, to domain.AppointmentStatus, actor int64) error {
	patch := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if to == domain.AppointmentStatusCancelled {
		patch["cancelled_by"] = actor
	}

	data, _, err := r.client.From("appointments").
		Update(patch, "representation", "").
		Eq("id", id64(id)).
		Eq("status", string(from)).
		Execute()
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	return expectRows(data, fmt.Sprintf("запись %d больше не в статусе %s", id, from), domain.ErrInvalidTransition)
}

func (r *SupabaseAppointmentRepo) List(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := applyAppointmentFilter(r.client.From("appointments").Select("*", "", false), filter).
		Order("date", ascending).
		Order("time", ascending)

	if filter.Limit > 0 {
		query = query.Range(filter.Offset, filter.Offset+filter.Limit-1, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return decodeAppointments(data)
}

func (r *SupabaseAppointmentRepo) CountByFilter(_ context.Context, filter domain.AppointmentFilter) (int, error) {
	_, count, err := applyAppointmentFilter(r.client.From("appointments").Select("id", "exact", true), filter).Execute()
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return int(count), nil
}

func applyAppointmentFilter(query *postgrest.FilterBuilder, filter domain.AppointmentFilter) *postgrest.FilterBuilder {
	if filter.DoctorID != nil {
		query = query.Eq("doctor_id", id64(*filter.DoctorID))
	}
	if filter.PatientID != nil {
		query = query.Eq("patient_id", id64(*filter.PatientID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.In("status", statuses)
	}
	if filter.StartDate != nil {
		query = query.Gte("date", filter.StartDate.Format(domain.DateLayout))
	}
	if filter.EndDate != nil {
		query = query.Lte("date", filter.EndDate.Format(domain.DateLayout))
	}
	return query
}

func decodeAppointments(data []byte) ([]domain.Appointment, error) {
	var rows []appointmentRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка разбора записей: %w", err)
	}

	appointments := make([]domain.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}

	return appointments, nil
}

// expectRows fails with sentinel when a mutating request matched nothing.
func expectRows(data []byte, what string, sentinel error) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", what, sentinel)
	}
	return nil
}

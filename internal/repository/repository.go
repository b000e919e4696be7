package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinic/internal/domain"
)

type Repositories struct {
	ScheduleRule ScheduleRuleRepository
	Leave        LeaveRepository
	Appointment  AppointmentRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ScheduleRule: NewScheduleRuleRepository(db),
		Leave:        NewLeaveRepository(db),
		Appointment:  NewAppointmentRepository(db),
	}
}

type ScheduleRuleRepository interface {
	Create(ctx context.Context, rule domain.WeeklyScheduleRule) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.WeeklyScheduleRule, error)
	Update(ctx context.Context, rule domain.WeeklyScheduleRule) error
	Delete(ctx context.Context, id int64) error
	// ListByDoctor returns rules ordered by id; weekday narrows to one day.
	ListByDoctor(ctx context.Context, doctorID int64, weekday *int) ([]domain.WeeklyScheduleRule, error)
}

type LeaveRepository interface {
	Create(ctx context.Context, leave domain.LeavePeriod) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.LeavePeriod, error)
	UpdateStatus(ctx context.Context, id int64, status domain.LeaveStatus) error
	// List returns periods overlapping [From, To] when those bounds are set.
	List(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeavePeriod, error)
}

type AppointmentRepository interface {
	// Insert returns domain.ErrSlotConflict when the store rejects the row
	// because a non-cancelled appointment holds the same doctor/date/time.
	Insert(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	// UpdateStatus applies the change only while the row is still in from.
	// It returns domain.ErrInvalidTransition when the row moved meanwhile.
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, actor int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
}

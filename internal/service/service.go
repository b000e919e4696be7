package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clinic/config"
	"clinic/internal/domain"
	"clinic/internal/repository"
	"clinic/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Clock       Clock
}

type Services struct {
	Availability AvailabilityService
	Appointment  AppointmentService
	Schedule     ScheduleService
	Export       ExportService
}

func NewServices(deps Deps) *Services {
	availability := NewAvailabilityService(deps.Repos.ScheduleRule, deps.Repos.Leave, deps.Repos.Appointment, deps.Logger)

	return &Services{
		Availability: availability,
		Appointment:  NewAppointmentService(deps.Repos.Appointment, availability, deps.Clock, deps.Logger),
		Schedule:     NewScheduleService(deps.Repos.ScheduleRule, deps.Repos.Leave, deps.Clock, deps.Logger),
		Export:       NewExportService(deps.Repos.Appointment, deps.FileStorage, deps.Clock, deps.Config.S3.PresignTTL, deps.Logger),
	}
}

// AvailabilityService answers "can this doctor be booked" questions. Every
// call reads fresh state; nothing is cached between calls.
type AvailabilityService interface {
	IsDateAvailable(ctx context.Context, doctorID int64, date time.Time) (bool, error)
	ComputeSlots(ctx context.Context, doctorID int64, date time.Time) ([]domain.TimeSlot, error)
	AvailableDates(ctx context.Context, doctorID int64, from, to time.Time) ([]time.Time, error)
}

type AppointmentService interface {
	Book(ctx context.Context, principal domain.AuthenticatedPrincipal, dto domain.BookAppointmentDTO) (*domain.Appointment, error)
	Cancel(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) error
	Transition(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, to domain.AppointmentStatus) error
	GetByID(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) (*domain.Appointment, error)
	List(ctx context.Context, principal domain.AuthenticatedPrincipal, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
}

type ScheduleService interface {
	CreateRule(ctx context.Context, principal domain.AuthenticatedPrincipal, doctorID int64, dto domain.CreateScheduleRuleDTO) (int64, error)
	GetRule(ctx context.Context, id int64) (*domain.WeeklyScheduleRule, error)
	ListRules(ctx context.Context, doctorID int64) ([]domain.WeeklyScheduleRule, error)
	UpdateRule(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, dto domain.UpdateScheduleRuleDTO) error
	DeleteRule(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) error

	CreateLeave(ctx context.Context, principal domain.AuthenticatedPrincipal, doctorID int64, dto domain.CreateLeaveDTO) (int64, error)
	ListLeaves(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeavePeriod, error)
	UpdateLeaveStatus(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, status domain.LeaveStatus) error
}

type ExportService interface {
	ExportDoctorCalendar(ctx context.Context, principal domain.AuthenticatedPrincipal, doctorID int64, from, to time.Time) (*domain.ExportResult, error)
	ExportDailyRoster(ctx context.Context, principal domain.AuthenticatedPrincipal, date time.Time) (*domain.ExportResult, error)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type AppointmentServiceImpl struct {
	repo         repository.AppointmentRepository
	availability AvailabilityService
	clock        Clock
	logger       *zap.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	availability AvailabilityService,
	clock Clock,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:         repo,
		availability: availability,
		clock:        clock,
		logger:       logger,
	}
}

// Book reserves a slot for a patient. The slot grid is recomputed on every
// call; the final word on double booking belongs to the store, whose
// rejection surfaces as domain.ErrSlotConflict. There are no retries.
func (s *AppointmentServiceImpl) Book(ctx context.Context, principal domain.AuthenticatedPrincipal, dto domain.BookAppointmentDTO) (*domain.Appointment, error) {
	patientID, err := s.bookingPatient(principal, dto.PatientID)
	if err != nil {
		return nil, err
	}

	if dto.DoctorID <= 0 {
		return nil, fmt.Errorf("идентификатор врача должен быть положительным: %w", domain.ErrInvalidInput)
	}

	date, err := domain.ParseDate(dto.Date)
	if err != nil {
		return nil, err
	}

	slotTime, err := domain.ParseClockTime(dto.Time)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if date.Before(today(s.clock)) || slotTime.On(date, s.clock.Location()).Before(now) {
		return nil, domain.ErrPastDate
	}

	slots, err := s.availability.ComputeSlots(ctx, dto.DoctorID, date)
	if err != nil {
		return nil, err
	}

	slot, found := findSlot(slots, slotTime)
	if !found {
		s.logger.Info("время вне сетки расписания",
			zap.Int64("doctor_id", dto.DoctorID),
			zap.String("date", dto.Date),
			zap.String("time", slotTime.String()))
		return nil, domain.ErrInvalidSlot
	}
	if !slot.Available {
		return nil, domain.ErrSlotConflict
	}

	created, err := s.repo.Insert(ctx, domain.Appointment{
		DoctorID:        dto.DoctorID,
		PatientID:       patientID,
		Date:            date,
		Time:            slotTime,
		DurationMinutes: domain.SlotMinutes,
		Status:          domain.AppointmentStatusScheduled,
		BookedBy:        principal.UserID,
		BookedAt:        now,
		PaymentStatus:   domain.PaymentStatusPending,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			s.logger.Info("слот занят параллельной записью",
				zap.Int64("doctor_id", dto.DoctorID),
				zap.String("date", dto.Date),
				zap.String("time", slotTime.String()))
			return nil, domain.ErrSlotConflict
		}
		s.logger.Error("ошибка создания записи", zap.Int64("doctor_id", dto.DoctorID), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	s.logger.Info("запись создана",
		zap.Int64("id", created.ID),
		zap.Int64("doctor_id", created.DoctorID),
		zap.Int64("patient_id", created.PatientID),
		zap.Int64("booked_by", created.BookedBy))

	return created, nil
}

// Cancel moves an active appointment to cancelled unless it already started.
func (s *AppointmentServiceImpl) Cancel(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) error {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !canAccess(principal, appointment) {
		return domain.ErrForbidden
	}

	if appointment.Status.Terminal() {
		return fmt.Errorf("запись в статусе %s: %w", appointment.Status, domain.ErrInvalidTransition)
	}

	if appointment.StartsAt(s.clock.Location()).Before(s.clock.Now()) {
		return domain.ErrAlreadyPast
	}

	return s.move(ctx, principal, appointment, domain.AppointmentStatusCancelled)
}

// Transition drives the staff-side moves: confirmed, completed, no_show.
func (s *AppointmentServiceImpl) Transition(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, to domain.AppointmentStatus) error {
	if to == domain.AppointmentStatusCancelled {
		return s.Cancel(ctx, principal, id)
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !principal.ManagesDoctor(appointment.DoctorID) {
		return domain.ErrForbidden
	}

	if !domain.CanTransition(appointment.Status, to) {
		return fmt.Errorf("%s -> %s: %w", appointment.Status, to, domain.ErrInvalidTransition)
	}

	return s.move(ctx, principal, appointment, to)
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) (*domain.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAccess(principal, appointment) {
		return nil, domain.ErrForbidden
	}

	return appointment, nil
}

// List narrows the filter to the caller: patients see their own records,
// doctors their own calendar.
func (s *AppointmentServiceImpl) List(ctx context.Context, principal domain.AuthenticatedPrincipal, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	switch {
	case principal.IsStaff():
	case principal.IsPatient():
		filter.PatientID = PointerTo(principal.UserID)
	case principal.Role == domain.UserRoleDoctor:
		filter.DoctorID = PointerTo(principal.UserID)
	default:
		return nil, 0, domain.ErrForbidden
	}

	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, 0, fmt.Errorf("неизвестный статус %q: %w", status, domain.ErrInvalidInput)
		}
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка записей", zap.Error(err))
		return nil, 0, domain.Upstream(err)
	}

	count, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения количества записей", zap.Error(err))
		return appointments, 0, nil
	}

	return appointments, count, nil
}

// bookingPatient resolves whose appointment is being created. Patients book
// for themselves; staff book on behalf of a named patient.
func (s *AppointmentServiceImpl) bookingPatient(principal domain.AuthenticatedPrincipal, requested int64) (int64, error) {
	if principal.UserID <= 0 {
		return 0, domain.ErrForbidden
	}

	switch {
	case principal.IsPatient():
		if requested != 0 && requested != principal.UserID {
			return 0, fmt.Errorf("пациент может записать только себя: %w", domain.ErrForbidden)
		}
		return principal.UserID, nil
	case principal.IsStaff():
		if requested <= 0 {
			return 0, fmt.Errorf("не указан пациент: %w", domain.ErrInvalidInput)
		}
		return requested, nil
	default:
		return 0, domain.ErrForbidden
	}
}

func (s *AppointmentServiceImpl) load(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("ошибка получения записи", zap.Int64("id", id), zap.Error(err))
		return nil, domain.Upstream(err)
	}
	return appointment, nil
}

func (s *AppointmentServiceImpl) move(ctx context.Context, principal domain.AuthenticatedPrincipal, appointment *domain.Appointment, to domain.AppointmentStatus) error {
	err := s.repo.UpdateStatus(ctx, appointment.ID, appointment.Status, to, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return err
		}
		s.logger.Error("ошибка смены статуса записи",
			zap.Int64("id", appointment.ID),
			zap.String("from", string(appointment.Status)),
			zap.String("to", string(to)),
			zap.Error(err))
		return domain.Upstream(err)
	}

	s.logger.Info("статус записи изменен",
		zap.Int64("id", appointment.ID),
		zap.String("from", string(appointment.Status)),
		zap.String("to", string(to)),
		zap.Int64("actor", principal.UserID))

	return nil
}

func canAccess(principal domain.AuthenticatedPrincipal, appointment *domain.Appointment) bool {
	if principal.IsPatient() {
		return appointment.PatientID == principal.UserID
	}
	return principal.ManagesDoctor(appointment.DoctorID)
}

func findSlot(slots []domain.TimeSlot, t domain.ClockTime) (domain.TimeSlot, bool) {
	for _, slot := range slots {
		if slot.Time == t {
			return slot, true
		}
	}
	return domain.TimeSlot{}, false
}

func PointerTo[T any](v T) *T {
	return &v
}

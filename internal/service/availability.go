package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/repository"
)

// MaxAvailabilityRange bounds AvailableDates to roughly two calendar months.
const MaxAvailabilityRange = 62

type AvailabilityServiceImpl struct {
	ruleRepo        repository.ScheduleRuleRepository
	leaveRepo       repository.LeaveRepository
	appointmentRepo repository.AppointmentRepository
	logger          *zap.Logger
}

func NewAvailabilityService(
	ruleRepo repository.ScheduleRuleRepository,
	leaveRepo repository.LeaveRepository,
	appointmentRepo repository.AppointmentRepository,
	logger *zap.Logger,
) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		ruleRepo:        ruleRepo,
		leaveRepo:       leaveRepo,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// IsDateAvailable is true when an active rule exists for the weekday and no
// approved leave covers the date. If either lookup fails the answer is false
// together with an upstream error.
func (s *AvailabilityServiceImpl) IsDateAvailable(ctx context.Context, doctorID int64, date time.Time) (bool, error) {
	if doctorID <= 0 {
		return false, fmt.Errorf("идентификатор врача должен быть положительным: %w", domain.ErrInvalidInput)
	}

	date = domain.DateOf(date)

	_, hasRule, err := s.ruleFor(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	if !hasRule {
		return false, nil
	}

	onLeave, err := s.onLeave(ctx, doctorID, date)
	if err != nil {
		return false, err
	}

	return !onLeave, nil
}

// ComputeSlots returns the 30-minute grid of the first active rule for the
// date's weekday, half-open on the rule's end. Slots matching a scheduled or
// confirmed appointment are marked unavailable. The result is empty, never
// nil, when the doctor has no rule that day or is on approved leave.
func (s *AvailabilityServiceImpl) ComputeSlots(ctx context.Context, doctorID int64, date time.Time) ([]domain.TimeSlot, error) {
	if doctorID <= 0 {
		return nil, fmt.Errorf("идентификатор врача должен быть положительным: %w", domain.ErrInvalidInput)
	}

	date = domain.DateOf(date)

	rule, hasRule, err := s.ruleFor(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if !hasRule {
		return []domain.TimeSlot{}, nil
	}

	onLeave, err := s.onLeave(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if onLeave {
		return []domain.TimeSlot{}, nil
	}

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		DoctorID:  &doctorID,
		Statuses:  domain.OccupyingStatuses,
		StartDate: &date,
		EndDate:   &date,
	})
	if err != nil {
		s.logger.Error("ошибка получения записей врача",
			zap.Int64("doctor_id", doctorID),
			zap.String("date", date.Format(domain.DateLayout)),
			zap.Error(err))
		return nil, domain.Upstream(err)
	}

	return buildSlots(rule, appointments), nil
}

// AvailableDates lists the dates in [from, to] that pass IsDateAvailable,
// reading rules and leaves once for the whole range.
func (s *AvailabilityServiceImpl) AvailableDates(ctx context.Context, doctorID int64, from, to time.Time) ([]time.Time, error) {
	if doctorID <= 0 {
		return nil, fmt.Errorf("идентификатор врача должен быть положительным: %w", domain.ErrInvalidInput)
	}

	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("дата окончания раньше даты начала: %w", domain.ErrInvalidInput)
	}
	if to.Sub(from) > MaxAvailabilityRange*24*time.Hour {
		return nil, fmt.Errorf("период не может превышать %d дней: %w", MaxAvailabilityRange, domain.ErrInvalidInput)
	}

	rules, err := s.ruleRepo.ListByDoctor(ctx, doctorID, nil)
	if err != nil {
		s.logger.Error("ошибка получения правил расписания", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	approved := domain.LeaveStatusApproved
	leaves, err := s.leaveRepo.List(ctx, domain.LeaveFilter{
		DoctorID: doctorID,
		From:     &from,
		To:       &to,
		Status:   &approved,
	})
	if err != nil {
		s.logger.Error("ошибка получения отпусков", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	dates := make([]time.Time, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if _, ok := domain.FirstActiveRule(rules, domain.WeekdayOf(d)); !ok {
			continue
		}
		if domain.AnyLeaveCovers(leaves, d) {
			continue
		}
		dates = append(dates, d)
	}

	return dates, nil
}

func (s *AvailabilityServiceImpl) ruleFor(ctx context.Context, doctorID int64, date time.Time) (domain.WeeklyScheduleRule, bool, error) {
	weekday := domain.WeekdayOf(date)

	rules, err := s.ruleRepo.ListByDoctor(ctx, doctorID, &weekday)
	if err != nil {
		s.logger.Error("ошибка получения правил расписания",
			zap.Int64("doctor_id", doctorID),
			zap.Int("day_of_week", weekday),
			zap.Error(err))
		return domain.WeeklyScheduleRule{}, false, domain.Upstream(err)
	}

	rule, ok := domain.FirstActiveRule(rules, weekday)
	return rule, ok, nil
}

func (s *AvailabilityServiceImpl) onLeave(ctx context.Context, doctorID int64, date time.Time) (bool, error) {
	approved := domain.LeaveStatusApproved

	leaves, err := s.leaveRepo.List(ctx, domain.LeaveFilter{
		DoctorID: doctorID,
		From:     &date,
		To:       &date,
		Status:   &approved,
	})
	if err != nil {
		s.logger.Error("ошибка получения отпусков",
			zap.Int64("doctor_id", doctorID),
			zap.String("date", date.Format(domain.DateLayout)),
			zap.Error(err))
		return false, domain.Upstream(err)
	}

	return domain.AnyLeaveCovers(leaves, date), nil
}

func buildSlots(rule domain.WeeklyScheduleRule, appointments []domain.Appointment) []domain.TimeSlot {
	taken := make(map[domain.ClockTime]bool, len(appointments))
	for _, a := range appointments {
		if a.Status.Occupying() {
			taken[a.Time] = true
		}
	}

	slots := make([]domain.TimeSlot, 0)
	for t := rule.StartTime; t < rule.EndTime; t = t.Add(domain.SlotMinutes) {
		slots = append(slots, domain.TimeSlot{
			Time:      t,
			Available: !taken[t],
		})
	}

	return slots
}

package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/repository"
	"clinic/pkg/validator"
)

type ScheduleServiceImpl struct {
	ruleRepo  repository.ScheduleRuleRepository
	leaveRepo repository.LeaveRepository
	clock     Clock
	logger    *zap.Logger
}

func NewScheduleService(
	ruleRepo repository.ScheduleRuleRepository,
	leaveRepo repository.LeaveRepository,
	clock Clock,
	logger *zap.Logger,
) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		ruleRepo:  ruleRepo,
		leaveRepo: leaveRepo,
		clock:     clock,
		logger:    logger,
	}
}

func (s *ScheduleServiceImpl) CreateRule(ctx context.Context, principal domain.AuthenticatedPrincipal, doctorID int64, dto domain.CreateScheduleRuleDTO) (int64, error) {
	if doctorID <= 0 {
		return 0, fmt.Errorf("идентификатор врача должен быть положительным: %w", domain.ErrInvalidInput)
	}
	if !principal.ManagesDoctor(doctorID) {
		return 0, domain.ErrForbidden
	}

	if !domain.ValidWeekday(dto.DayOfWeek) {
		return 0, fmt.Errorf("день недели должен быть от 1 (воскресенье) до 7 (суббота): %w", domain.ErrInvalidInput)
	}

	start, end, err := parseWorkingHours(dto.StartTime, dto.EndTime)
	if err != nil {
		s.logger.Error("неверные часы приема", zap.String("start", dto.StartTime), zap.String("end", dto.EndTime), zap.Error(err))
		return 0, err
	}

	active := true
	if dto.Active != nil {
		active = *dto.Active
	}

	now := s.clock.Now()
	rule := domain.WeeklyScheduleRule{
		DoctorID:  doctorID,
		DayOfWeek: dto.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("ошибка создания правила расписания", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return 0, domain.Upstream(err)
	}

	return id, nil
}

func (s *ScheduleServiceImpl) GetRule(ctx context.Context, id int64) (*domain.WeeklyScheduleRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("ошибка получения правила расписания", zap.Int64("id", id), zap.Error(err))
		return nil, domain.Upstream(err)
	}
	return rule, nil
}

func (s *ScheduleServiceImpl) ListRules(ctx context.Context, doctorID int64) ([]domain.WeeklyScheduleRule, error) {
	rules, err := s.ruleRepo.ListByDoctor(ctx, doctorID, nil)
	if err != nil {
		s.logger.Error("ошибка получения правил расписания", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return nil, domain.Upstream(err)
	}
	return rules, nil
}

func (s *ScheduleServiceImpl) UpdateRule(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, dto domain.UpdateScheduleRuleDTO) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if !principal.ManagesDoctor(rule.DoctorID) {
		return domain.ErrForbidden
	}

	startStr, endStr := rule.StartTime.String(), rule.EndTime.String()
	if dto.StartTime != nil {
		startStr = *dto.StartTime
	}
	if dto.EndTime != nil {
		endStr = *dto.EndTime
	}

	start, end, err := parseWorkingHours(startStr, endStr)
	if err != nil {
		return err
	}

	rule.StartTime = start
	rule.EndTime = end
	if dto.Active != nil {
		rule.Active = *dto.Active
	}
	rule.UpdatedAt = s.clock.Now()

	if err := s.ruleRepo.Update(ctx, *rule); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("ошибка обновления правила расписания", zap.Int64("id", id), zap.Error(err))
		return domain.Upstream(err)
	}

	return nil
}

func (s *ScheduleServiceImpl) DeleteRule(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if !principal.ManagesDoctor(rule.DoctorID) {
		return domain.ErrForbidden
	}

	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("ошибка удаления правила расписания", zap.Int64("id", id), zap.Error(err))
		return domain.Upstream(err)
	}

	return nil
}

// CreateLeave files a leave request. Doctors file pending requests; staff
// may file an already approved period.
func (s *ScheduleServiceImpl) CreateLeave(ctx context.Context, principal domain.AuthenticatedPrincipal, doctorID int64, dto domain.CreateLeaveDTO) (int64, error) {
	if doctorID <= 0 {
		return 0, fmt.Errorf("идентификатор врача должен быть положительным: %w", domain.ErrInvalidInput)
	}
	if !principal.ManagesDoctor(doctorID) {
		return 0, domain.ErrForbidden
	}

	start, err := domain.ParseDate(dto.StartDate)
	if err != nil {
		return 0, err
	}
	end, err := domain.ParseDate(dto.EndDate)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("отпуск заканчивается раньше, чем начинается: %w", domain.ErrInvalidInput)
	}

	status := domain.LeaveStatusPending
	if principal.IsStaff() {
		status = domain.LeaveStatusApproved
	}

	now := s.clock.Now()
	id, err := s.leaveRepo.Create(ctx, domain.LeavePeriod{
		DoctorID:  doctorID,
		StartDate: start,
		EndDate:   end,
		Status:    status,
		Reason:    validator.SanitizeString(dto.Reason),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error("ошибка создания отпуска", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return 0, domain.Upstream(err)
	}

	s.logger.Info("отпуск создан",
		zap.Int64("id", id),
		zap.Int64("doctor_id", doctorID),
		zap.String("status", string(status)))

	return id, nil
}

func (s *ScheduleServiceImpl) ListLeaves(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeavePeriod, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("неизвестный статус отпуска %q: %w", *filter.Status, domain.ErrInvalidInput)
	}

	leaves, err := s.leaveRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения отпусков", zap.Int64("doctor_id", filter.DoctorID), zap.Error(err))
		return nil, domain.Upstream(err)
	}
	return leaves, nil
}

// UpdateLeaveStatus approves or rejects a leave. Only staff decide.
func (s *ScheduleServiceImpl) UpdateLeaveStatus(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, status domain.LeaveStatus) error {
	if !principal.IsStaff() {
		return domain.ErrForbidden
	}
	if !status.Valid() {
		return fmt.Errorf("неизвестный статус отпуска %q: %w", status, domain.ErrInvalidInput)
	}

	if err := s.leaveRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("ошибка обновления статуса отпуска", zap.Int64("id", id), zap.Error(err))
		return domain.Upstream(err)
	}

	s.logger.Info("статус отпуска изменен", zap.Int64("id", id), zap.String("status", string(status)), zap.Int64("actor", principal.UserID))
	return nil
}

// parseWorkingHours validates a rule window: HH:MM, start before end, both
// on the half-hour grid so that every slot is a full 30 minutes.
func parseWorkingHours(startStr, endStr string) (domain.ClockTime, domain.ClockTime, error) {
	start, err := domain.ParseClockTime(startStr)
	if err != nil {
		return 0, 0, err
	}
	end, err := domain.ParseClockTime(endStr)
	if err != nil {
		return 0, 0, err
	}

	if start >= end {
		return 0, 0, fmt.Errorf("время начала должно быть раньше времени окончания: %w", domain.ErrInvalidInput)
	}
	if !start.OnGrid(0) || !end.OnGrid(0) {
		return 0, 0, fmt.Errorf("часы приема должны быть кратны %d минутам: %w", domain.SlotMinutes, domain.ErrInvalidInput)
	}

	return start, end, nil
}

package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/repository"
)

// PublishingAppointments wraps an appointment repository and publishes each
// successful write. It stands in for the database trigger on backends that
// offer no LISTEN channel to this process.
type PublishingAppointments struct {
	repository.AppointmentRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewPublishingAppointments(repo repository.AppointmentRepository, publisher Publisher, logger *zap.Logger) *PublishingAppointments {
	return &PublishingAppointments{
		AppointmentRepository: repo,
		publisher:             publisher,
		logger:                logger,
	}
}

func (r *PublishingAppointments) Insert(ctx context.Context, a domain.Appointment) (*domain.Appointment, error) {
	created, err := r.AppointmentRepository.Insert(ctx, a)
	if err != nil {
		return nil, err
	}

	r.publisher.Publish(domain.ChangeEvent{
		Type:        domain.ChangeTypeInsert,
		Entity:      domain.EntityAppointment,
		Appointment: *created,
		OccurredAt:  time.Now(),
	})

	return created, nil
}

func (r *PublishingAppointments) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, actor int64) error {
	if err := r.AppointmentRepository.UpdateStatus(ctx, id, from, to, actor); err != nil {
		return err
	}

	updated, err := r.AppointmentRepository.GetByID(ctx, id)
	if err != nil {
		// the write is committed; only the notification is lost
		r.logger.Warn("не удалось перечитать запись для уведомления", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	r.publisher.Publish(domain.ChangeEvent{
		Type:        domain.ChangeTypeUpdate,
		Entity:      domain.EntityAppointment,
		Appointment: *updated,
		OccurredAt:  time.Now(),
	})

	return nil
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clinic/internal/domain"
)

// NotifyChannel is the channel the appointments trigger notifies on.
const NotifyChannel = "appointment_changes"

// PGListener relays appointment notifications from Postgres to a Publisher.
// Any committed insert or update is seen, whichever client made it.
type PGListener struct {
	dsn        string
	publisher  Publisher
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewPGListener(dsn string, publisher Publisher, logger *zap.Logger) *PGListener {
	return &PGListener{
		dsn:        dsn,
		publisher:  publisher,
		logger:     logger,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is done, reconnecting with exponential backoff.
func (l *PGListener) Run(ctx context.Context) error {
	backoff := l.minBackoff

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		l.logger.Warn("соединение LISTEN потеряно, переподключение",
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("ошибка подписки на канал: %w", err)
	}

	l.logger.Info("подписка на изменения записей активна", zap.String("channel", NotifyChannel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeNotification([]byte(notification.Payload))
		if err != nil {
			l.logger.Warn("не удалось разобрать уведомление", zap.String("payload", notification.Payload), zap.Error(err))
			continue
		}

		l.publisher.Publish(event)
	}
}

type notificationPayload struct {
	Type        domain.ChangeType `json:"type"`
	Entity      string            `json:"entity"`
	Appointment struct {
		ID              int64                    `json:"id"`
		DoctorID        int64                    `json:"doctor_id"`
		PatientID       int64                    `json:"patient_id"`
		Date            string                   `json:"date"`
		Time            domain.ClockTime         `json:"time"`
		DurationMinutes int                      `json:"duration_minutes"`
		Status          domain.AppointmentStatus `json:"status"`
		BookedBy        int64                    `json:"booked_by"`
		BookedAt        time.Time                `json:"booked_at"`
		PaymentStatus   domain.PaymentStatus     `json:"payment_status"`
		CancelledBy     *int64                   `json:"cancelled_by"`
		UpdatedAt       time.Time                `json:"updated_at"`
	} `json:"appointment"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DecodeNotification parses the JSON built by notify_appointment_change().
func DecodeNotification(payload []byte) (domain.ChangeEvent, error) {
	var p notificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.ChangeEvent{}, err
	}

	if p.Entity != domain.EntityAppointment {
		return domain.ChangeEvent{}, fmt.Errorf("неизвестная сущность %q", p.Entity)
	}
	if p.Type != domain.ChangeTypeInsert && p.Type != domain.ChangeTypeUpdate {
		return domain.ChangeEvent{}, fmt.Errorf("неизвестный тип изменения %q", p.Type)
	}

	date, err := domain.ParseDate(p.Appointment.Date)
	if err != nil {
		return domain.ChangeEvent{}, err
	}
	if p.Appointment.ID == 0 {
		return domain.ChangeEvent{}, errors.New("в уведомлении нет идентификатора записи")
	}

	a := p.Appointment
	return domain.ChangeEvent{
		Type:   p.Type,
		Entity: p.Entity,
		Appointment: domain.Appointment{
			ID:              a.ID,
			DoctorID:        a.DoctorID,
			PatientID:       a.PatientID,
			Date:            date,
			Time:            a.Time,
			DurationMinutes: a.DurationMinutes,
			Status:          a.Status,
			BookedBy:        a.BookedBy,
			BookedAt:        a.BookedAt,
			PaymentStatus:   a.PaymentStatus,
			CancelledBy:     a.CancelledBy,
			UpdatedAt:       a.UpdatedAt,
		},
		OccurredAt: p.OccurredAt,
	}, nil
}

package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Subscriber is the part of the broker the feed needs.
type Subscriber interface {
	Subscribe(filter realtime.Filter) *realtime.Subscription
}

// AppointmentFeed streams appointment change events to websocket clients.
type AppointmentFeed struct {
	broker   Subscriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewAppointmentFeed(broker Subscriber, allowedOrigins []string, logger *zap.Logger) *AppointmentFeed {
	return &AppointmentFeed{
		broker: broker,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// FilterFor scopes what a principal may watch. Patients and doctors only see
// their own appointments; staff may narrow to one doctor.
func FilterFor(principal domain.AuthenticatedPrincipal, doctorID *int64) (realtime.Filter, error) {
	switch {
	case principal.IsStaff():
		return realtime.Filter{DoctorID: doctorID}, nil
	case principal.IsPatient():
		id := principal.UserID
		return realtime.Filter{PatientID: &id, DoctorID: doctorID}, nil
	case principal.Role == domain.UserRoleDoctor:
		if doctorID != nil && *doctorID != principal.UserID {
			return realtime.Filter{}, domain.ErrForbidden
		}
		id := principal.UserID
		return realtime.Filter{DoctorID: &id}, nil
	default:
		return realtime.Filter{}, domain.ErrForbidden
	}
}

// Serve upgrades the request and pumps events until the client goes away.
func (f *AppointmentFeed) Serve(c *gin.Context, filter realtime.Filter) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.logger.Warn("не удалось открыть websocket", zap.Error(err))
		return
	}

	clientID := uuid.New().String()
	sub := f.broker.Subscribe(filter)

	ctx, cancel := context.WithCancel(c.Request.Context())

	f.logger.Info("клиент подписан на изменения записей", zap.String("client", clientID))

	go f.readPump(conn, cancel)
	f.writePump(ctx, conn, sub, clientID)

	cancel()
	sub.Close()
	f.logger.Info("клиент отключен", zap.String("client", clientID), zap.Int64("dropped", sub.Dropped()))
}

// readPump only services control frames; client messages are ignored.
func (f *AppointmentFeed) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *AppointmentFeed) writePump(ctx context.Context, conn *websocket.Conn, sub *realtime.Subscription, clientID string) {
	defer conn.Close()

	events := make(chan domain.ChangeEvent)
	go func() {
		defer close(events)
		for {
			event, err := sub.Next(ctx)
			if err != nil {
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					f.logger.Warn("ошибка отправки события", zap.String("client", clientID), zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

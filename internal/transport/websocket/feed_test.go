package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/realtime"
)

func TestFilterFor(t *testing.T) {
	seven := int64(7)

	f, err := FilterFor(domain.AuthenticatedPrincipal{UserID: 5, Role: domain.UserRolePatient}, nil)
	if err != nil || f.PatientID == nil || *f.PatientID != 5 {
		t.Errorf("пациент: фильтр %+v, ошибка %v", f, err)
	}

	f, err = FilterFor(domain.AuthenticatedPrincipal{UserID: 7, Role: domain.UserRoleDoctor}, nil)
	if err != nil || f.DoctorID == nil || *f.DoctorID != 7 {
		t.Errorf("врач: фильтр %+v, ошибка %v", f, err)
	}

	if _, err := FilterFor(domain.AuthenticatedPrincipal{UserID: 8, Role: domain.UserRoleDoctor}, &seven); err == nil {
		t.Error("врач не должен видеть чужие записи")
	}

	f, err = FilterFor(domain.AuthenticatedPrincipal{UserID: 1, Role: domain.UserRoleStaff}, &seven)
	if err != nil || f.DoctorID == nil || *f.DoctorID != 7 || f.PatientID != nil {
		t.Errorf("сотрудник: фильтр %+v, ошибка %v", f, err)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://clinic.example"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if !check(r) {
		t.Error("запрос без Origin должен пропускаться")
	}

	r.Header.Set("Origin", "https://clinic.example")
	if !check(r) {
		t.Error("разрешенный Origin отклонен")
	}

	r.Header.Set("Origin", "https://evil.example")
	if check(r) {
		t.Error("чужой Origin пропущен")
	}
}

func TestAppointmentFeed_StreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	broker := realtime.NewBroker(8, zap.NewNop())
	feed := NewAppointmentFeed(broker, []string{"*"}, zap.NewNop())

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		feed.Serve(c, realtime.Filter{})
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("ошибка подключения: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for broker.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	broker.Publish(domain.ChangeEvent{
		Type:        domain.ChangeTypeInsert,
		Entity:      domain.EntityAppointment,
		Appointment: domain.Appointment{ID: 99, DoctorID: 1, Time: domain.ClockTime(9 * 60)},
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got domain.ChangeEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ошибка чтения события: %v", err)
	}

	if got.Appointment.ID != 99 || got.Appointment.Time.String() != "09:00" {
		t.Errorf("получено %+v", got)
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"clinic/internal/domain"
)

var (
	patient = domain.AuthenticatedPrincipal{UserID: 100, Role: domain.UserRolePatient}
	other   = domain.AuthenticatedPrincipal{UserID: 101, Role: domain.UserRolePatient}
	staff   = domain.AuthenticatedPrincipal{UserID: 1, Role: domain.UserRoleStaff}
	doctor  = domain.AuthenticatedPrincipal{UserID: doctorID, Role: domain.UserRoleDoctor}
)

type bookingFixture struct {
	*availabilityFixture
	svc *AppointmentServiceImpl
}

// newBookingFixture opens Mondays 09:00-11:00 and freezes time at
// Monday 2025-03-10 08:00 UTC.
func newBookingFixture(now string) *bookingFixture {
	f := &bookingFixture{availabilityFixture: newAvailabilityFixture()}
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
	f.svc = NewAppointmentService(f.appointments, f.availabilityFixture.svc, clockAt(now), zap.NewNop())
	return f
}

func booking(date, time string) domain.BookAppointmentDTO {
	return domain.BookAppointmentDTO{DoctorID: doctorID, Date: date, Time: time}
}

func TestBook_CreatesScheduledAppointment(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")

	got, err := f.svc.Book(context.Background(), patient, booking("2025-03-10", "09:30"))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if got.ID == 0 {
		t.Error("expected an id from the store")
	}
	if got.PatientID != patient.UserID || got.BookedBy != patient.UserID {
		t.Errorf("patient/booked_by = %d/%d, want %d", got.PatientID, got.BookedBy, patient.UserID)
	}
	if got.Status != domain.AppointmentStatusScheduled {
		t.Errorf("status = %s, want scheduled", got.Status)
	}
	if got.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("payment status = %s, want pending", got.PaymentStatus)
	}
	if got.DurationMinutes != domain.SlotMinutes {
		t.Errorf("duration = %d, want %d", got.DurationMinutes, domain.SlotMinutes)
	}
	if got.Time.String() != "09:30" {
		t.Errorf("time = %s, want 09:30", got.Time)
	}
}

func TestBook_StaffBooksForPatient(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")

	dto := booking("2025-03-10", "10:00")
	dto.PatientID = 555

	got, err := f.svc.Book(context.Background(), staff, dto)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if got.PatientID != 555 || got.BookedBy != staff.UserID {
		t.Fatalf("patient/booked_by = %d/%d, want 555/%d", got.PatientID, got.BookedBy, staff.UserID)
	}
}

func TestBook_ConflictLaw(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, patient, booking("2025-03-10", "10:30")); err != nil {
		t.Fatalf("Book: %v", err)
	}

	slots, err := f.availabilityFixture.svc.ComputeSlots(ctx, doctorID, mustDate("2025-03-10"))
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}
	for _, s := range slots {
		if s.Time.String() == "10:30" && s.Available {
			t.Fatal("booked slot still reported available")
		}
	}

	_, err = f.svc.Book(ctx, other, booking("2025-03-10", "10:30"))
	if !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("second booking err = %v, want ErrSlotConflict", err)
	}
}

func TestBook_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		now       string
		principal domain.AuthenticatedPrincipal
		dto       domain.BookAppointmentDTO
		want      error
	}{
		{
			name:      "off grid time",
			now:       "2025-03-10 08:00",
			principal: patient,
			dto:       booking("2025-03-10", "09:45"),
			want:      domain.ErrInvalidSlot,
		},
		{
			name:      "at rule end",
			now:       "2025-03-10 08:00",
			principal: patient,
			dto:       booking("2025-03-10", "11:00"),
			want:      domain.ErrInvalidSlot,
		},
		{
			name:      "day without rule",
			now:       "2025-03-10 08:00",
			principal: patient,
			dto:       booking("2025-03-11", "09:00"),
			want:      domain.ErrInvalidSlot,
		},
		{
			name:      "past date",
			now:       "2025-03-10 08:00",
			principal: patient,
			dto:       booking("2025-03-03", "09:00"),
			want:      domain.ErrPastDate,
		},
		{
			name:      "slot already started today",
			now:       "2025-03-10 09:40",
			principal: patient,
			dto:       booking("2025-03-10", "09:30"),
			want:      domain.ErrPastDate,
		},
		{
			name:      "bad date",
			now:       "2025-03-10 08:00",
			principal: patient,
			dto:       booking("10.03.2025", "09:30"),
			want:      domain.ErrInvalidInput,
		},
		{
			name:      "patient books for someone else",
			now:       "2025-03-10 08:00",
			principal: patient,
			dto:       domain.BookAppointmentDTO{DoctorID: doctorID, PatientID: other.UserID, Date: "2025-03-10", Time: "09:30"},
			want:      domain.ErrForbidden,
		},
		{
			name:      "staff without patient",
			now:       "2025-03-10 08:00",
			principal: staff,
			dto:       booking("2025-03-10", "09:30"),
			want:      domain.ErrInvalidInput,
		},
		{
			name:      "doctor cannot book",
			now:       "2025-03-10 08:00",
			principal: doctor,
			dto:       booking("2025-03-10", "09:30"),
			want:      domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(tt.now)

			_, err := f.svc.Book(context.Background(), tt.principal, tt.dto)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if f.appointments.inserts != 0 {
				t.Fatalf("store saw %d inserts, want none", f.appointments.inserts)
			}
		})
	}
}

func TestBook_OnLeaveIsInvalidSlot(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")
	f.leaves.add(doctorID, "2025-03-17", "2025-03-17", domain.LeaveStatusApproved)

	_, err := f.svc.Book(context.Background(), patient, booking("2025-03-17", "09:00"))
	if !errors.Is(err, domain.ErrInvalidSlot) {
		t.Fatalf("err = %v, want ErrInvalidSlot", err)
	}
}

func TestBook_ConcurrentAttemptsExactlyOneWins(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			principal := domain.AuthenticatedPrincipal{UserID: int64(200 + n), Role: domain.UserRolePatient}

			_, err := f.svc.Book(context.Background(), principal, booking("2025-03-10", "10:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 || conflicts != attempts-1 {
		t.Fatalf("succeeded=%d conflicts=%d, want 1 and %d", succeeded, conflicts, attempts-1)
	}
}

func TestBook_StoreFailureIsUpstream(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")
	f.appointments.insertErr = errStoreDown

	_, err := f.svc.Book(context.Background(), patient, booking("2025-03-10", "09:00"))
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("err = %v, want ErrUpstreamFailure", err)
	}
}

func TestBook_CancelledSlotCanBeRebooked(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")
	ctx := context.Background()

	first, err := f.svc.Book(ctx, patient, booking("2025-03-10", "09:00"))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.svc.Cancel(ctx, patient, first.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := f.svc.Book(ctx, other, booking("2025-03-10", "09:00")); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestCancel(t *testing.T) {
	date := mustDate("2025-03-10")

	tests := []struct {
		name      string
		now       string
		status    domain.AppointmentStatus
		principal domain.AuthenticatedPrincipal
		want      error
	}{
		{name: "own future appointment", now: "2025-03-10 08:00", status: domain.AppointmentStatusScheduled, principal: patient},
		{name: "confirmed by staff", now: "2025-03-10 08:00", status: domain.AppointmentStatusConfirmed, principal: staff},
		{name: "by own doctor", now: "2025-03-10 08:00", status: domain.AppointmentStatusScheduled, principal: doctor},
		{name: "already started", now: "2025-03-10 09:31", status: domain.AppointmentStatusScheduled, principal: patient, want: domain.ErrAlreadyPast},
		{name: "next day", now: "2025-03-11 08:00", status: domain.AppointmentStatusConfirmed, principal: staff, want: domain.ErrAlreadyPast},
		{name: "already cancelled", now: "2025-03-10 08:00", status: domain.AppointmentStatusCancelled, principal: patient, want: domain.ErrInvalidTransition},
		{name: "completed", now: "2025-03-10 08:00", status: domain.AppointmentStatusCompleted, principal: staff, want: domain.ErrInvalidTransition},
		{name: "someone else's", now: "2025-03-10 08:00", status: domain.AppointmentStatusScheduled, principal: other, want: domain.ErrForbidden},
		{name: "another doctor", now: "2025-03-10 08:00", status: domain.AppointmentStatusScheduled, principal: domain.AuthenticatedPrincipal{UserID: doctorID + 1, Role: domain.UserRoleDoctor}, want: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(tt.now)
			id := f.appointments.seed(domain.Appointment{
				DoctorID:  doctorID,
				PatientID: patient.UserID,
				Date:      date,
				Time:      mustClock("09:30"),
				Status:    tt.status,
			})

			err := f.svc.Cancel(context.Background(), tt.principal, id)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Cancel: %v", err)
				}
				got, _ := f.appointments.GetByID(context.Background(), id)
				if got.Status != domain.AppointmentStatusCancelled {
					t.Fatalf("status = %s, want cancelled", got.Status)
				}
				if got.CancelledBy == nil || *got.CancelledBy != tt.principal.UserID {
					t.Fatalf("cancelled_by = %v, want %d", got.CancelledBy, tt.principal.UserID)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCancel_NotFound(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")

	err := f.svc.Cancel(context.Background(), patient, 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTransition(t *testing.T) {
	date := mustDate("2025-03-10")

	tests := []struct {
		name      string
		from      domain.AppointmentStatus
		to        domain.AppointmentStatus
		principal domain.AuthenticatedPrincipal
		want      error
	}{
		{name: "confirm", from: domain.AppointmentStatusScheduled, to: domain.AppointmentStatusConfirmed, principal: doctor},
		{name: "complete", from: domain.AppointmentStatusConfirmed, to: domain.AppointmentStatusCompleted, principal: staff},
		{name: "no show", from: domain.AppointmentStatusScheduled, to: domain.AppointmentStatusNoShow, principal: staff},
		{name: "complete unconfirmed", from: domain.AppointmentStatusScheduled, to: domain.AppointmentStatusCompleted, principal: staff, want: domain.ErrInvalidTransition},
		{name: "reopen", from: domain.AppointmentStatusCancelled, to: domain.AppointmentStatusScheduled, principal: staff, want: domain.ErrInvalidTransition},
		{name: "patient confirms", from: domain.AppointmentStatusScheduled, to: domain.AppointmentStatusConfirmed, principal: patient, want: domain.ErrForbidden},
		{name: "cancel goes through cancel rules", from: domain.AppointmentStatusScheduled, to: domain.AppointmentStatusCancelled, principal: patient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture("2025-03-10 08:00")
			id := f.appointments.seed(domain.Appointment{
				DoctorID:  doctorID,
				PatientID: patient.UserID,
				Date:      date,
				Time:      mustClock("10:00"),
				Status:    tt.from,
			})

			err := f.svc.Transition(context.Background(), tt.principal, id, tt.to)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("err = %v, want %v", err, tt.want)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition: %v", err)
			}
			got, _ := f.appointments.GetByID(context.Background(), id)
			if got.Status != tt.to {
				t.Fatalf("status = %s, want %s", got.Status, tt.to)
			}
		})
	}
}

func TestList_ScopesToCaller(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")
	date := mustDate("2025-03-10")
	f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: patient.UserID, Date: date, Time: mustClock("09:00"), Status: domain.AppointmentStatusScheduled})
	f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: other.UserID, Date: date, Time: mustClock("09:30"), Status: domain.AppointmentStatusScheduled})
	f.appointments.seed(domain.Appointment{DoctorID: doctorID + 1, PatientID: patient.UserID, Date: date, Time: mustClock("09:00"), Status: domain.AppointmentStatusConfirmed})

	tests := []struct {
		name      string
		principal domain.AuthenticatedPrincipal
		filter    domain.AppointmentFilter
		want      int
	}{
		{name: "patient sees own", principal: patient, want: 2},
		{name: "patient cannot widen", principal: patient, filter: domain.AppointmentFilter{PatientID: PointerTo(other.UserID)}, want: 2},
		{name: "doctor sees own calendar", principal: doctor, want: 2},
		{name: "staff sees all", principal: staff, want: 3},
		{name: "staff filters by status", principal: staff, filter: domain.AppointmentFilter{Statuses: []domain.AppointmentStatus{domain.AppointmentStatusConfirmed}}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := f.svc.List(context.Background(), tt.principal, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != tt.want || total != tt.want {
				t.Fatalf("got %d items (total %d), want %d", len(items), total, tt.want)
			}
		})
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")

	_, _, err := f.svc.List(context.Background(), staff, domain.AppointmentFilter{
		Statuses: []domain.AppointmentStatus{"lost"},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetByID_Access(t *testing.T) {
	f := newBookingFixture("2025-03-10 08:00")
	id := f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: patient.UserID, Date: mustDate("2025-03-10"), Time: mustClock("09:00"), Status: domain.AppointmentStatusScheduled})

	if _, err := f.svc.GetByID(context.Background(), patient, id); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), doctor, id); err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), other, id); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger err = %v, want ErrForbidden", err)
	}
}

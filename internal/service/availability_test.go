package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"clinic/internal/domain"
)

const doctorID int64 = 7

type availabilityFixture struct {
	rules        *memoryRules
	leaves       *memoryLeaves
	appointments *memoryAppointments
	svc          *AvailabilityServiceImpl
}

func newAvailabilityFixture() *availabilityFixture {
	f := &availabilityFixture{
		rules:        newMemoryRules(),
		leaves:       newMemoryLeaves(),
		appointments: newMemoryAppointments(),
	}
	f.svc = NewAvailabilityService(f.rules, f.leaves, f.appointments, zap.NewNop())
	return f
}

func slotTimes(slots []domain.TimeSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Time.String()
	}
	return out
}

func TestComputeSlots_HalfOpenGrid(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")

	// 2025-03-10 is a Monday.
	slots, err := f.svc.ComputeSlots(context.Background(), doctorID, mustDate("2025-03-10"))
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if got := slotTimes(slots); !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %s should be available", s.Time)
		}
	}
}

func TestComputeSlots_MarksOccupiedSlots(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
	date := mustDate("2025-03-10")

	f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: 1, Date: date, Time: mustClock("09:30"), Status: domain.AppointmentStatusScheduled})
	f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: 2, Date: date, Time: mustClock("10:00"), Status: domain.AppointmentStatusConfirmed})
	f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: 3, Date: date, Time: mustClock("10:30"), Status: domain.AppointmentStatusCancelled})
	f.appointments.seed(domain.Appointment{DoctorID: doctorID + 1, PatientID: 4, Date: date, Time: mustClock("09:00"), Status: domain.AppointmentStatusScheduled})

	slots, err := f.svc.ComputeSlots(context.Background(), doctorID, date)
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	want := map[string]bool{"09:00": true, "09:30": false, "10:00": false, "10:30": true}
	for _, s := range slots {
		if s.Available != want[s.Time.String()] {
			t.Errorf("slot %s available = %v, want %v", s.Time, s.Available, want[s.Time.String()])
		}
	}
}

func TestComputeSlots_EmptyWithoutRuleOrOnLeave(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
	f.leaves.add(doctorID, "2025-03-17", "2025-03-17", domain.LeaveStatusApproved)

	tests := []struct {
		name string
		date string
	}{
		{name: "tuesday has no rule", date: "2025-03-11"},
		{name: "monday on approved leave", date: "2025-03-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := f.svc.ComputeSlots(context.Background(), doctorID, mustDate(tt.date))
			if err != nil {
				t.Fatalf("ComputeSlots: %v", err)
			}
			if slots == nil || len(slots) != 0 {
				t.Fatalf("slots = %#v, want empty non-nil slice", slots)
			}
		})
	}
}

func TestComputeSlots_IgnoresInactiveAndUsesFirstRule(t *testing.T) {
	f := newAvailabilityFixture()
	inactive := f.rules.add(doctorID, domain.Monday, "07:00", "08:00")
	r := f.rules.rules[inactive]
	r.Active = false
	f.rules.rules[inactive] = r
	f.rules.add(doctorID, domain.Monday, "14:00", "15:00")
	f.rules.add(doctorID, domain.Monday, "09:00", "12:00")

	slots, err := f.svc.ComputeSlots(context.Background(), doctorID, mustDate("2025-03-10"))
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	want := []string{"14:00", "14:30"}
	if got := slotTimes(slots); !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestComputeSlots_Idempotent(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "12:00")
	date := mustDate("2025-03-10")
	f.appointments.seed(domain.Appointment{DoctorID: doctorID, PatientID: 1, Date: date, Time: mustClock("10:00"), Status: domain.AppointmentStatusScheduled})

	first, err := f.svc.ComputeSlots(context.Background(), doctorID, date)
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}
	second, err := f.svc.ComputeSlots(context.Background(), doctorID, date)
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ:\n%v\n%v", first, second)
	}
}

func TestComputeSlots_UpstreamFailure(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
	f.appointments.listErr = errStoreDown

	_, err := f.svc.ComputeSlots(context.Background(), doctorID, mustDate("2025-03-10"))
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("err = %v, want ErrUpstreamFailure", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want the store error kept in the chain", err)
	}
}

func TestIsDateAvailable(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
	f.rules.add(doctorID, domain.Tuesday, "09:00", "11:00")
	f.rules.add(doctorID, domain.Wednesday, "09:00", "11:00")
	f.leaves.add(doctorID, "2025-03-10", "2025-03-12", domain.LeaveStatusApproved)
	f.leaves.add(doctorID, "2025-03-17", "2025-03-19", domain.LeaveStatusPending)
	f.leaves.add(doctorID, "2025-03-24", "2025-03-24", domain.LeaveStatusRejected)

	tests := []struct {
		date string
		want bool
	}{
		{date: "2025-03-09", want: false}, // sunday, no rule
		{date: "2025-03-10", want: false}, // leave start
		{date: "2025-03-11", want: false},
		{date: "2025-03-12", want: false}, // leave end
		{date: "2025-03-13", want: false}, // thursday, no rule
		{date: "2025-03-17", want: true},  // pending leave does not count
		{date: "2025-03-18", want: true},
		{date: "2025-03-24", want: true}, // rejected leave does not count
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := f.svc.IsDateAvailable(context.Background(), doctorID, mustDate(tt.date))
			if err != nil {
				t.Fatalf("IsDateAvailable: %v", err)
			}
			if got != tt.want {
				t.Fatalf("IsDateAvailable(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsDateAvailable_ConservativeOnReadFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *availabilityFixture)
	}{
		{name: "rules unreadable", setup: func(f *availabilityFixture) { f.rules.err = errStoreDown }},
		{name: "leaves unreadable", setup: func(f *availabilityFixture) { f.leaves.err = errStoreDown }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAvailabilityFixture()
			f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
			tt.setup(f)

			got, err := f.svc.IsDateAvailable(context.Background(), doctorID, mustDate("2025-03-10"))
			if got {
				t.Fatal("IsDateAvailable reported true on a failed read")
			}
			if !errors.Is(err, domain.ErrUpstreamFailure) {
				t.Fatalf("err = %v, want ErrUpstreamFailure", err)
			}
		})
	}
}

func TestIsDateAvailable_RejectsBadDoctor(t *testing.T) {
	f := newAvailabilityFixture()

	_, err := f.svc.IsDateAvailable(context.Background(), 0, mustDate("2025-03-10"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAvailableDates(t *testing.T) {
	f := newAvailabilityFixture()
	f.rules.add(doctorID, domain.Monday, "09:00", "11:00")
	f.rules.add(doctorID, domain.Friday, "09:00", "11:00")
	f.leaves.add(doctorID, "2025-03-14", "2025-03-17", domain.LeaveStatusApproved)

	dates, err := f.svc.AvailableDates(context.Background(), doctorID, mustDate("2025-03-09"), mustDate("2025-03-24"))
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}

	got := make([]string, len(dates))
	for i, d := range dates {
		got[i] = d.Format(domain.DateLayout)
	}
	want := []string{"2025-03-10", "2025-03-21", "2025-03-24"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
}

func TestAvailableDates_RangeValidation(t *testing.T) {
	f := newAvailabilityFixture()

	tests := []struct {
		name     string
		from, to string
	}{
		{name: "reversed", from: "2025-03-10", to: "2025-03-09"},
		{name: "too long", from: "2025-01-01", to: "2025-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AvailableDates(context.Background(), doctorID, mustDate(tt.from), mustDate(tt.to))
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// transitions lists the allowed next states; terminal states have none.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusCompleted: nil,
	AppointmentStatusCancelled: nil,
	AppointmentStatusNoShow:    nil,
}

func (s AppointmentStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s AppointmentStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Occupying reports whether an appointment in this status blocks its slot
// when slots are computed.
func (s AppointmentStatus) Occupying() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OccupyingStatuses are the statuses considered when marking slots taken.
var OccupyingStatuses = []AppointmentStatus{AppointmentStatusScheduled, AppointmentStatusConfirmed}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Appointment struct {
	ID              int64             `json:"id"`
	DoctorID        int64             `json:"doctor_id"`
	PatientID       int64             `json:"patient_id"`
	Date            time.Time         `json:"date"`
	Time            ClockTime         `json:"time" swaggertype:"string" example:"09:30"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	BookedBy        int64             `json:"booked_by"`
	BookedAt        time.Time         `json:"booked_at"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
	CancelledBy     *int64            `json:"cancelled_by,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// StartsAt is the appointment start as a wall-clock instant in loc.
func (a Appointment) StartsAt(loc *time.Location) time.Time {
	return a.Time.On(a.Date, loc)
}

func (a Appointment) EndsAt(loc *time.Location) time.Time {
	return a.StartsAt(loc).Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type BookAppointmentDTO struct {
	DoctorID  int64  `json:"doctor_id" binding:"required"`
	PatientID int64  `json:"patient_id"`
	Date      string `json:"date" binding:"required,isodate" example:"2025-03-10"`
	Time      string `json:"time" binding:"required,clock" example:"09:30"`
}

type UpdateAppointmentStatusDTO struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=confirmed completed cancelled no_show"`
}

type AppointmentFilter struct {
	DoctorID  *int64              `json:"doctor_id"`
	PatientID *int64              `json:"patient_id"`
	Statuses  []AppointmentStatus `json:"statuses"`
	StartDate *time.Time          `json:"start_date"`
	EndDate   *time.Time          `json:"end_date"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

// TimeSlot is derived per request and never stored.
type TimeSlot struct {
	Time      ClockTime `json:"time" swaggertype:"string" example:"09:00"`
	Available bool      `json:"available"`
}

package domain

import (
	"time"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	}
	return false
}

// LeavePeriod is a date range, inclusive on both ends, during which a doctor
// takes no appointments once approved.
type LeavePeriod struct {
	ID        int64       `json:"id"`
	DoctorID  int64       `json:"doctor_id"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Status    LeaveStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Covers is true only for approved periods with start <= date <= end.
func (l LeavePeriod) Covers(date time.Time) bool {
	if l.Status != LeaveStatusApproved {
		return false
	}
	d := DateOf(date)
	return !d.Before(DateOf(l.StartDate)) && !d.After(DateOf(l.EndDate))
}

func AnyLeaveCovers(leaves []LeavePeriod, date time.Time) bool {
	for _, l := range leaves {
		if l.Covers(date) {
			return true
		}
	}
	return false
}

type CreateLeaveDTO struct {
	StartDate string `json:"start_date" binding:"required,isodate"`
	EndDate   string `json:"end_date" binding:"required,isodate"`
	Reason    string `json:"reason" binding:"max=500"`
}

type UpdateLeaveStatusDTO struct {
	Status LeaveStatus `json:"status" binding:"required,oneof=pending approved rejected"`
}

type LeaveFilter struct {
	DoctorID int64
	From     *time.Time
	To       *time.Time
	Status   *LeaveStatus
}

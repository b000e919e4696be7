package domain

import (
	"time"
)

type ChangeType string

const (
	ChangeTypeInsert ChangeType = "insert"
	ChangeTypeUpdate ChangeType = "update"
)

const EntityAppointment = "appointment"

// ChangeEvent describes a committed write as seen by realtime subscribers.
type ChangeEvent struct {
	Type        ChangeType  `json:"type"`
	Entity      string      `json:"entity"`
	Appointment Appointment `json:"appointment"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

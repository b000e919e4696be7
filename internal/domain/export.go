package domain

import (
	"time"
)

// ExportResult points at an uploaded export through a time-limited link.
type ExportResult struct {
	ObjectName  string    `json:"object_name"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Items       int       `json:"items"`
}

type CalendarExportDTO struct {
	From string `json:"from" binding:"required,isodate" example:"2025-03-01"`
	To   string `json:"to" binding:"required,isodate" example:"2025-03-31"`
}

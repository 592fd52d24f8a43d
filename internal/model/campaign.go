// internal/model/campaign.go
package model

import "time"

// Campaign statuses. A campaign reaches completed or failed only after every
// contact in the run has a terminal email log row.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Campaign struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	Name              string     `db:"name" json:"name"`
	Subject           string     `db:"subject" json:"subject"`
	Body              string     `db:"body" json:"body"`
	Status            string     `db:"status" json:"status"`
	TotalContacts     int        `db:"total_contacts" json:"total_contacts"`
	SentCount         int        `db:"sent_count" json:"sent_count"`
	FailedCount       int        `db:"failed_count" json:"failed_count"`
	IncludeSignature  bool       `db:"include_signature" json:"include_signature"`
	IncludeLogo       bool       `db:"include_logo" json:"include_logo"`
	IsScheduled       bool       `db:"is_scheduled" json:"is_scheduled"`
	ScheduledSendDate *time.Time `db:"scheduled_send_date" json:"scheduled_send_date,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

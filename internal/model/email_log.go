// internal/model/email_log.go
package model

import "time"

// EmailLog is the durable record of one send attempt.
//
// The row is inserted in pending state before the transport is invoked, so a
// pixel hit can never race ahead of the log write, then promoted to sent or
// failed. tracking_pixel_id is unique and immutable once assigned;
// opened_count is updated only by the open recorder and never decreases.
type EmailLog struct {
	ID                 string     `db:"id" json:"id"`
	CampaignID         string     `db:"campaign_id" json:"campaign_id"`
	FollowUpCampaignID *string    `db:"follow_up_campaign_id" json:"follow_up_campaign_id,omitempty"`
	ContactID          string     `db:"contact_id" json:"contact_id"`
	UserID             string     `db:"user_id" json:"user_id"`
	RecipientEmail     string     `db:"recipient_email" json:"recipient_email"`
	Subject            string     `db:"subject" json:"subject"`
	Body               string     `db:"body" json:"body"`
	Status             string     `db:"status" json:"status"` // pending, sent, failed
	ErrorMessage       string     `db:"error_message" json:"error_message,omitempty"`
	SentAt             *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	TrackingPixelID    string     `db:"tracking_pixel_id" json:"tracking_pixel_id"`
	OpenedCount        int        `db:"opened_count" json:"opened_count"`
	FirstOpenedAt      *time.Time `db:"first_opened_at" json:"first_opened_at,omitempty"`
	LastOpenedAt       *time.Time `db:"last_opened_at" json:"last_opened_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// Terminal reports whether the log carries a final per-contact outcome.
func (l *EmailLog) Terminal() bool {
	return l.Status == StatusSent || l.Status == StatusFailed
}

// Per-log delivery statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// internal/model/email_open.go
package model

import "time"

// EmailOpen is one discrete open event, appended per tracking pixel fetch.
// Rows are never updated or deleted; the email log carries the aggregates.
type EmailOpen struct {
	ID                 string    `db:"id" json:"id"`
	EmailLogID         string    `db:"email_log_id" json:"email_log_id"`
	CampaignID         string    `db:"campaign_id" json:"campaign_id"`
	FollowUpCampaignID *string   `db:"follow_up_campaign_id" json:"follow_up_campaign_id,omitempty"`
	ContactID          string    `db:"contact_id" json:"contact_id"`
	UserID             string    `db:"user_id" json:"user_id"`
	OpenedAt           time.Time `db:"opened_at" json:"opened_at"`
}

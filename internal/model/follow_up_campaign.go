// internal/model/follow_up_campaign.go
package model

import "time"

// FollowUpCampaign targets the engagement-qualified subset of a parent
// campaign's contacts. It references the parent's contacts and creates its
// own email logs.
type FollowUpCampaign struct {
	ID                  string     `db:"id" json:"id"`
	CampaignID          string     `db:"campaign_id" json:"campaign_id"`
	UserID              string     `db:"user_id" json:"user_id"`
	Name                string     `db:"name" json:"name"`
	Subject             string     `db:"subject" json:"subject"`
	Body                string     `db:"body" json:"body"`
	Status              string     `db:"status" json:"status"`
	EngagementThreshold int        `db:"engagement_threshold" json:"engagement_threshold"`
	TotalSelected       int        `db:"total_selected" json:"total_selected"`
	TotalExcluded       int        `db:"total_excluded" json:"total_excluded"`
	SentCount           int        `db:"sent_count" json:"sent_count"`
	FailedCount         int        `db:"failed_count" json:"failed_count"`
	IncludeSignature    bool       `db:"include_signature" json:"include_signature"`
	IncludeLogo         bool       `db:"include_logo" json:"include_logo"`
	IsScheduled         bool       `db:"is_scheduled" json:"is_scheduled"`
	ScheduledSendDate   *time.Time `db:"scheduled_send_date" json:"scheduled_send_date,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

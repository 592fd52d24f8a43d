// internal/model/contact_exclusion.go
package model

import "time"

// ContactExclusion removes one contact from a follow-up audience. It is a
// denylist entry layered over the threshold computation and never deletes
// the contact itself.
type ContactExclusion struct {
	ID                 string    `db:"id" json:"id"`
	FollowUpCampaignID string    `db:"follow_up_campaign_id" json:"follow_up_campaign_id"`
	ContactID          string    `db:"contact_id" json:"contact_id"`
	Reason             string    `db:"reason" json:"reason"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// internal/model/contact.go
package model

import "time"

// Contact is one recipient row uploaded into a campaign. Immutable once
// created; duplicates per campaign are permitted.
type Contact struct {
	ID         string    `db:"id" json:"id"`
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Email      string    `db:"email" json:"email"`
	Company    string    `db:"company" json:"company"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

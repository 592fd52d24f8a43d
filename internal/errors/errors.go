// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is returned when a campaign id resolves to no row.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrFollowUpNotFound is returned when a follow-up campaign id resolves to
// no row.
type ErrFollowUpNotFound struct {
	FollowUpID string
}

func (e *ErrFollowUpNotFound) Error() string {
	return fmt.Sprintf("follow-up campaign %s not found", e.FollowUpID)
}

func NewFollowUpNotFound(id string) error {
	return &ErrFollowUpNotFound{FollowUpID: id}
}

// ErrSMTPNotConfigured signals that the user has no usable SMTP settings.
// It must surface before any contact is processed.
type ErrSMTPNotConfigured struct {
	UserID string
}

func (e *ErrSMTPNotConfigured) Error() string {
	return fmt.Sprintf("SMTP settings not configured for user %s", e.UserID)
}

func NewSMTPNotConfigured(userID string) error {
	return &ErrSMTPNotConfigured{UserID: userID}
}

// internal/model/send_context.go
package model

// SendContext identifies which batch a send or open belongs to: the original
// campaign run, or a follow-up run against a subset of the same contacts. It
// is carried explicitly through the dispatcher, recorder and segmenter so
// nothing downstream needs to null-check the storage discriminator column.
type SendContext struct {
	kind       sendKind
	campaignID string
	followUpID string
}

type sendKind int

const (
	sendOriginal sendKind = iota
	sendFollowUp
)

// OriginalSend is the context for a campaign's first batch.
func OriginalSend(campaignID string) SendContext {
	return SendContext{kind: sendOriginal, campaignID: campaignID}
}

// FollowUpSend is the context for a follow-up batch. campaignID is the
// parent campaign owning the contacts.
func FollowUpSend(followUpID, campaignID string) SendContext {
	return SendContext{kind: sendFollowUp, campaignID: campaignID, followUpID: followUpID}
}

func (c SendContext) IsFollowUp() bool { return c.kind == sendFollowUp }

// CampaignID returns the campaign owning the contact list, for follow-ups
// the parent campaign.
func (c SendContext) CampaignID() string { return c.campaignID }

// FollowUpID returns the follow-up campaign id, empty for original sends.
func (c SendContext) FollowUpID() string { return c.followUpID }

// FollowUpRef returns the nullable follow-up reference stored on email logs
// and open events.
func (c SendContext) FollowUpRef() *string {
	if c.kind != sendFollowUp {
		return nil
	}
	id := c.followUpID
	return &id
}

// internal/service/single_send.go
package service

import (
	"context"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/mailer"
	"github.com/wishsend/wishsend-backend/internal/model"
)

// SingleSendParams carries one ad-hoc send. Subject and body arrive already
// personalized; the caller may supply a tracking pixel id to tie the open
// counts to a pixel it already embedded, otherwise a fresh one is minted.
type SingleSendParams struct {
	To                 string
	Subject            string
	Body               string
	CampaignID         string
	ContactID          string
	FollowUpCampaignID *string
	TrackingPixelID    string
}

// SendSingle delivers one email outside of a run loop. The log row is written
// pending before the transport call, same as a run send, and the campaign's
// signature flags decide whether the sender block is appended.
func (d *Dispatcher) SendSingle(ctx context.Context, userID string, p SingleSendParams) (*model.EmailLog, error) {
	settings, profile, err := d.senderState(ctx, userID)
	if err != nil {
		return nil, err
	}

	campaign, err := d.CampaignRepo.GetByID(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.UserID != userID {
		return nil, appErrors.NewCampaignNotFound(p.CampaignID)
	}

	trackingID := p.TrackingPixelID
	html := mailer.NewlinesToBreaks(p.Body)
	if trackingID == "" {
		trackingID = mailer.NewTrackingPixelID()
		html = mailer.EmbedPixel(html, d.TrackingBaseURL, trackingID)
	}
	if campaign.IncludeSignature && profile != nil {
		html += mailer.ComposeSignature(profile, mailer.SignatureOptions{
			IncludeLogo: campaign.IncludeLogo && profile.LogoEnabled,
			LogoURL:     profile.CompanyLogoURL,
		})
	}

	log := &model.EmailLog{
		CampaignID:         p.CampaignID,
		FollowUpCampaignID: p.FollowUpCampaignID,
		ContactID:          p.ContactID,
		UserID:             userID,
		RecipientEmail:     p.To,
		Subject:            p.Subject,
		Body:               html,
		TrackingPixelID:    trackingID,
	}
	if err := d.LogRepo.CreatePending(ctx, log); err != nil {
		return nil, err
	}

	if err := d.Transport.Send(ctx, settings, mailer.Message{
		From:    settings.From,
		To:      p.To,
		Subject: p.Subject,
		HTML:    html,
	}); err != nil {
		if markErr := d.LogRepo.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			d.Log.Error().Err(markErr).Str("email_log_id", log.ID).Msg("failed to mark log failed")
		}
		return nil, err
	}

	d.markSent(ctx, log.ID, p.ContactID)
	log.Status = model.StatusSent
	return log, nil
}

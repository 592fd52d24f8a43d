// internal/service/dispatcher.go
package service

import (
	"context"
	"time"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/mailer"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/repository"
)

// ContactOutcome is the terminal result for one contact in a run, delivered
// progressively through the OnProgress hook and collected in the RunResult.
type ContactOutcome struct {
	ContactID string `json:"contact_id"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// RunResult summarizes one completed send run. Sent+Failed always equals the
// number of contacts holding a terminal email log row for the context.
type RunResult struct {
	Context  model.SendContext `json:"-"`
	Total    int               `json:"total"`
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Resumed  int               `json:"resumed"`
	Status   string            `json:"status"`
	Outcomes []ContactOutcome  `json:"outcomes"`
}

// Dispatcher sequences per-contact send attempts for a campaign or follow-up
// run. Contacts are processed one at a time in list order with a fixed pause
// between attempts; a per-contact failure is terminal for that contact and
// never aborts the run.
type Dispatcher struct {
	CampaignRepo repository.CampaignRepositoryInterface
	FollowUpRepo repository.FollowUpRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	LogRepo      repository.EmailLogRepositoryInterface
	SettingsRepo repository.SettingsRepositoryInterface
	Exclusions   repository.ExclusionRepositoryInterface
	Transport    mailer.Transport

	TrackingBaseURL string
	SendDelay       time.Duration

	// OnProgress, when set, receives each contact's terminal outcome as it
	// lands so a caller can render live progress.
	OnProgress func(ContactOutcome)

	Log *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewDispatcher(
	campaignRepo repository.CampaignRepositoryInterface,
	followUpRepo repository.FollowUpRepositoryInterface,
	contactRepo repository.ContactRepositoryInterface,
	logRepo repository.EmailLogRepositoryInterface,
	settingsRepo repository.SettingsRepositoryInterface,
	exclusions repository.ExclusionRepositoryInterface,
	transport mailer.Transport,
	trackingBaseURL string,
	sendDelay time.Duration,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		CampaignRepo:    campaignRepo,
		FollowUpRepo:    followUpRepo,
		ContactRepo:     contactRepo,
		LogRepo:         logRepo,
		SettingsRepo:    settingsRepo,
		Exclusions:      exclusions,
		Transport:       transport,
		TrackingBaseURL: trackingBaseURL,
		SendDelay:       sendDelay,
		Log:             log.WithComponent("dispatcher"),
		now:             time.Now,
		sleep:           sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// RunCampaign executes the original send for a campaign: all of its contacts,
// in upload order.
func (d *Dispatcher) RunCampaign(ctx context.Context, campaignID string) (*RunResult, error) {
	campaign, err := d.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	settings, profile, err := d.senderState(ctx, campaign.UserID)
	if err != nil {
		return nil, err
	}

	contacts, err := d.ContactRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status != model.StatusSending {
		if err := d.CampaignRepo.UpdateStatus(ctx, campaignID, model.StatusSending); err != nil {
			return nil, err
		}
	}

	result, err := d.run(ctx, runSpec{
		sendCtx:          model.OriginalSend(campaignID),
		userID:           campaign.UserID,
		subjectTemplate:  campaign.Subject,
		bodyTemplate:     campaign.Body,
		includeSignature: campaign.IncludeSignature,
		includeLogo:      campaign.IncludeLogo,
	}, contacts, settings, profile)
	if err != nil {
		return nil, err
	}

	if err := d.CampaignRepo.FinalizeRun(ctx, campaignID, result.Status, result.Sent, result.Failed); err != nil {
		return nil, err
	}
	return result, nil
}

// RunFollowUp executes a follow-up send. The audience is recomputed from
// durable state so a headless (scheduled) run needs no ephemeral selection:
// parent-campaign contacts whose original-send open count meets the stored
// engagement threshold, minus the follow-up's persisted exclusion rows.
func (d *Dispatcher) RunFollowUp(ctx context.Context, followUpID string) (*RunResult, error) {
	followUp, err := d.FollowUpRepo.GetByID(ctx, followUpID)
	if err != nil {
		return nil, err
	}

	settings, profile, err := d.senderState(ctx, followUp.UserID)
	if err != nil {
		return nil, err
	}

	contacts, err := d.ContactRepo.ListByCampaign(ctx, followUp.CampaignID)
	if err != nil {
		return nil, err
	}
	openCounts, err := d.LogRepo.OpenCountsByCampaign(ctx, followUp.CampaignID)
	if err != nil {
		return nil, err
	}
	excluded, err := d.Exclusions.ListContactIDs(ctx, followUpID)
	if err != nil {
		return nil, err
	}

	audience := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if openCounts[c.ID] >= followUp.EngagementThreshold && !excluded[c.ID] {
			audience = append(audience, c)
		}
	}

	if followUp.Status != model.StatusSending {
		if err := d.FollowUpRepo.UpdateStatus(ctx, followUpID, model.StatusSending); err != nil {
			return nil, err
		}
	}

	result, err := d.run(ctx, runSpec{
		sendCtx:          model.FollowUpSend(followUpID, followUp.CampaignID),
		userID:           followUp.UserID,
		subjectTemplate:  followUp.Subject,
		bodyTemplate:     followUp.Body,
		includeSignature: followUp.IncludeSignature,
		includeLogo:      followUp.IncludeLogo,
	}, audience, settings, profile)
	if err != nil {
		return nil, err
	}

	if err := d.FollowUpRepo.FinalizeRun(ctx, followUpID, result.Status, result.Sent, result.Failed); err != nil {
		return nil, err
	}
	return result, nil
}

// senderState resolves the run's credential bundle and sender profile up
// front; a missing SMTP configuration fails fast before any contact is
// touched.
func (d *Dispatcher) senderState(ctx context.Context, userID string) (*model.SMTPSettings, *model.UserProfile, error) {
	settings, err := d.SettingsRepo.GetSMTPSettings(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !settings.Configured() {
		return nil, nil, appErrors.NewSMTPNotConfigured(userID)
	}
	profile, err := d.SettingsRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return settings, profile, nil
}

type runSpec struct {
	sendCtx          model.SendContext
	userID           string
	subjectTemplate  string
	bodyTemplate     string
	includeSignature bool
	includeLogo      bool
}

func (d *Dispatcher) run(ctx context.Context, spec runSpec, contacts []*model.Contact, settings *model.SMTPSettings, profile *model.UserProfile) (*RunResult, error) {
	// Contacts that already hold a terminal log for this context were
	// handled by an earlier, interrupted run; fold their outcome into the
	// totals and skip them so a re-invocation resumes instead of re-sending.
	existing, err := d.LogRepo.TerminalOutcomes(ctx, spec.sendCtx)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Context: spec.sendCtx,
		Total:   len(contacts),
	}

	attempted := false
	for _, contact := range contacts {
		if status, ok := existing[contact.ID]; ok {
			d.record(result, ContactOutcome{ContactID: contact.ID, Email: contact.Email, Status: status})
			result.Resumed++
			continue
		}

		// The delay paces consecutive attempts, so it runs between them,
		// not after the final contact.
		if attempted {
			d.sleep(ctx, d.SendDelay)
		}
		attempted = true

		outcome := d.sendOne(ctx, spec, contact, settings, profile)
		d.record(result, outcome)
	}

	if result.Total > 0 && result.Failed == result.Total {
		result.Status = model.StatusFailed
	} else {
		result.Status = model.StatusCompleted
	}
	return result, nil
}

func (d *Dispatcher) record(result *RunResult, outcome ContactOutcome) {
	result.Outcomes = append(result.Outcomes, outcome)
	switch outcome.Status {
	case model.StatusSent:
		result.Sent++
	case model.StatusFailed:
		result.Failed++
	}
	if d.OnProgress != nil {
		d.OnProgress(outcome)
	}
}

func (d *Dispatcher) sendOne(ctx context.Context, spec runSpec, contact *model.Contact, settings *model.SMTPSettings, profile *model.UserProfile) ContactOutcome {
	trackingID := mailer.NewTrackingPixelID()

	subject := mailer.Personalize(spec.subjectTemplate, contact, profile, mailer.ModeSend)
	body := mailer.Personalize(spec.bodyTemplate, contact, profile, mailer.ModeSend)

	html := mailer.NewlinesToBreaks(body)
	html = mailer.EmbedPixel(html, d.TrackingBaseURL, trackingID)
	if spec.includeSignature && profile != nil {
		html += mailer.ComposeSignature(profile, mailer.SignatureOptions{
			IncludeLogo: spec.includeLogo && profile.LogoEnabled,
			LogoURL:     profile.CompanyLogoURL,
		})
	}

	log := &model.EmailLog{
		CampaignID:         spec.sendCtx.CampaignID(),
		FollowUpCampaignID: spec.sendCtx.FollowUpRef(),
		ContactID:          contact.ID,
		UserID:             spec.userID,
		RecipientEmail:     contact.Email,
		Subject:            subject,
		Body:               html,
		TrackingPixelID:    trackingID,
	}

	// The pending row lands before the transport call so the pixel id is
	// resolvable before any client could fetch it. Without the row the
	// contact would be counted failed with no log to show for it, so the
	// insert gets the same retry treatment as markSent.
	if err := d.createPending(ctx, log); err != nil {
		d.Log.Error().Err(err).Str("contact_id", contact.ID).Msg("failed to create email log")
		return ContactOutcome{ContactID: contact.ID, Email: contact.Email, Status: model.StatusFailed, Error: err.Error()}
	}

	err := d.Transport.Send(ctx, settings, mailer.Message{
		From:    settings.From,
		To:      contact.Email,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		d.Log.Warn().Err(err).Str("contact_id", contact.ID).Str("to", contact.Email).Msg("send failed")
		if markErr := d.LogRepo.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			d.Log.Error().Err(markErr).Str("email_log_id", log.ID).Msg("failed to mark log failed")
		}
		return ContactOutcome{ContactID: contact.ID, Email: contact.Email, Status: model.StatusFailed, Error: err.Error()}
	}

	d.markSent(ctx, log.ID, contact.ID)
	return ContactOutcome{ContactID: contact.ID, Email: contact.Email, Status: model.StatusSent}
}

// createPending inserts the pending log row, retrying transient failures
// with backoff. Only an exhausted retry surfaces as the contact's failure.
func (d *Dispatcher) createPending(ctx context.Context, log *model.EmailLog) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if err = d.LogRepo.CreatePending(ctx, log); err == nil {
			return nil
		}
		d.sleep(ctx, time.Duration(attempt)*500*time.Millisecond)
	}
	return err
}

// markSent promotes the pending row after a successful send. The send cannot
// be undone, so a failing write is retried with backoff; losing it would
// corrupt the sent-count accounting.
func (d *Dispatcher) markSent(ctx context.Context, logID, contactID string) {
	sentAt := d.now()
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if err = d.LogRepo.MarkSent(ctx, logID, sentAt); err == nil {
			return
		}
		d.sleep(ctx, time.Duration(attempt)*500*time.Millisecond)
	}
	d.Log.Error().Err(err).Str("email_log_id", logID).Str("contact_id", contactID).
		Msg("email sent but log write kept failing")
}

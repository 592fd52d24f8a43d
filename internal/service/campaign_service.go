// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/mailer"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/queue"
	"github.com/wishsend/wishsend-backend/internal/repository"
)

// CampaignService covers campaign lifecycle outside the send loop itself:
// creation with the uploaded contact list, stats, previews, follow-up
// composition and run enqueueing. Every entry point taking a campaign or
// follow-up id resolves it through an ownership check first; another
// tenant's id behaves exactly like a missing one.
type CampaignService struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	FollowUpRepo  repository.FollowUpRepositoryInterface
	ContactRepo   repository.ContactRepositoryInterface
	LogRepo       repository.EmailLogRepositoryInterface
	SettingsRepo  repository.SettingsRepositoryInterface
	ExclusionRepo repository.ExclusionRepositoryInterface
	Segmenter     *Segmenter
	Queue         queue.Publisher
}

// ownedCampaign resolves a campaign id for the given user. A row owned by
// someone else is reported as not found so the id's existence leaks nothing.
func (s *CampaignService) ownedCampaign(ctx context.Context, userID, id string) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (s *CampaignService) ownedFollowUp(ctx context.Context, userID, id string) (*model.FollowUpCampaign, error) {
	f, err := s.FollowUpRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != userID {
		return nil, appErrors.NewFollowUpNotFound(id)
	}
	return f, nil
}

// NewCampaignParams is the validated payload for campaign creation. Contact
// rows arrive already parsed; ingestion is not this service's concern.
type NewCampaignParams struct {
	Name              string
	Subject           string
	Body              string
	IncludeSignature  bool
	IncludeLogo       bool
	ScheduledSendDate *time.Time
	Contacts          []*model.Contact
}

func (s *CampaignService) CreateCampaign(ctx context.Context, userID string, p NewCampaignParams) (*model.Campaign, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("campaign name is required")
	}
	if p.Subject == "" || p.Body == "" {
		return nil, fmt.Errorf("subject and body templates are required")
	}

	c := &model.Campaign{
		UserID:            userID,
		Name:              p.Name,
		Subject:           p.Subject,
		Body:              p.Body,
		TotalContacts:     len(p.Contacts),
		IncludeSignature:  p.IncludeSignature,
		IncludeLogo:       p.IncludeLogo,
		IsScheduled:       p.ScheduledSendDate != nil,
		ScheduledSendDate: p.ScheduledSendDate,
	}
	if c.IsScheduled {
		c.Status = model.StatusScheduled
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	for _, contact := range p.Contacts {
		contact.CampaignID = c.ID
	}
	if err := s.ContactRepo.BulkCreate(ctx, p.Contacts); err != nil {
		return nil, err
	}
	return c, nil
}

// AddContacts appends uploaded contact rows to an unsent campaign and bumps
// its contact total.
func (s *CampaignService) AddContacts(ctx context.Context, userID, campaignID string, contacts []*model.Contact) (*model.Campaign, error) {
	c, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.StatusDraft && c.Status != model.StatusScheduled {
		return nil, fmt.Errorf("contacts cannot be added in status: %s", c.Status)
	}
	if len(contacts) == 0 {
		return nil, fmt.Errorf("no contacts supplied")
	}

	for _, contact := range contacts {
		contact.CampaignID = campaignID
	}
	if err := s.ContactRepo.BulkCreate(ctx, contacts); err != nil {
		return nil, err
	}
	c.TotalContacts += len(contacts)
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCampaign rewrites an unsent campaign's templates and flags. Once a
// run has started the campaign is immutable; the logs already reference the
// rendered content.
func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, id string, p NewCampaignParams) (*model.Campaign, error) {
	c, err := s.ownedCampaign(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.StatusDraft && c.Status != model.StatusScheduled {
		return nil, fmt.Errorf("campaign cannot be edited in status: %s", c.Status)
	}
	if p.Name == "" || p.Subject == "" || p.Body == "" {
		return nil, fmt.Errorf("name, subject and body are required")
	}

	c.Name = p.Name
	c.Subject = p.Subject
	c.Body = p.Body
	c.IncludeSignature = p.IncludeSignature
	c.IncludeLogo = p.IncludeLogo
	c.IsScheduled = p.ScheduledSendDate != nil
	c.ScheduledSendDate = p.ScheduledSendDate
	if c.IsScheduled {
		c.Status = model.StatusScheduled
	} else {
		c.Status = model.StatusDraft
	}
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CampaignDetails bundles a campaign with its per-status log stats.
type CampaignDetails struct {
	Campaign *model.Campaign `json:"campaign"`
	Stats    map[string]int  `json:"stats"`
}

func (s *CampaignService) GetCampaignDetails(ctx context.Context, userID, id string) (*CampaignDetails, error) {
	campaign, err := s.ownedCampaign(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.LogRepo.StatusCounts(ctx, model.OriginalSend(id))
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range stats {
		total += n
	}
	stats["total"] = total
	return &CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

func (s *CampaignService) ListCampaigns(ctx context.Context, userID string) ([]*model.Campaign, error) {
	return s.CampaignRepo.ListByUser(ctx, userID)
}

// ListCampaignLogs returns the per-contact delivery state of the original
// send, pending rows included.
func (s *CampaignService) ListCampaignLogs(ctx context.Context, userID, campaignID string) ([]*model.EmailLog, error) {
	if _, err := s.ownedCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	return s.LogRepo.ListByContext(ctx, model.OriginalSend(campaignID))
}

// ListLogOpens returns the full open history for one email log under the
// user's campaign.
func (s *CampaignService) ListLogOpens(ctx context.Context, userID, campaignID, logID string) ([]*model.EmailOpen, error) {
	if _, err := s.ownedCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	return s.LogRepo.ListOpensByLog(ctx, logID)
}

// RenderPreview personalizes the campaign template for one contact in
// preview mode: empty sender fields show a readable label instead of
// vanishing. Previews are never sent.
func (s *CampaignService) RenderPreview(ctx context.Context, userID, campaignID, contactID string) (subject, body string, err error) {
	campaign, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return "", "", err
	}
	contact, err := s.ContactRepo.GetByID(ctx, contactID)
	if err != nil {
		return "", "", err
	}
	if contact == nil {
		return "", "", fmt.Errorf("contact %s not found", contactID)
	}
	profile, err := s.SettingsRepo.GetProfile(ctx, campaign.UserID)
	if err != nil {
		return "", "", err
	}

	subject = mailer.Personalize(campaign.Subject, contact, profile, mailer.ModePreview)
	body = mailer.Personalize(campaign.Body, contact, profile, mailer.ModePreview)

	if campaign.IncludeSignature && profile != nil {
		body = mailer.NewlinesToBreaks(body) + mailer.ComposeSignature(profile, mailer.SignatureOptions{
			IncludeLogo: campaign.IncludeLogo && profile.LogoEnabled,
			LogoURL:     profile.CompanyLogoURL,
		})
	}
	return subject, body, nil
}

// Engagement partitions the campaign's contacts against the threshold for
// the follow-up composer.
func (s *CampaignService) Engagement(ctx context.Context, userID, campaignID string, threshold int) (*Selection, error) {
	if _, err := s.ownedCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	return s.Segmenter.Segment(ctx, campaignID, threshold)
}

// ManualExclusion is one client-requested audience removal.
type ManualExclusion struct {
	ContactID string `json:"contact_id"`
	Reason    string `json:"reason"`
}

// NewFollowUpParams composes a follow-up campaign from a selection the
// client finished working with.
type NewFollowUpParams struct {
	Name                string
	Subject             string
	Body                string
	EngagementThreshold int
	IncludeSignature    bool
	IncludeLogo         bool
	ScheduledSendDate   *time.Time
	Exclusions          []ManualExclusion
}

// CreateFollowUp durably snapshots the selection: the follow-up row with its
// threshold and totals, plus one ContactExclusion row per manual exclusion.
func (s *CampaignService) CreateFollowUp(ctx context.Context, userID, campaignID string, p NewFollowUpParams) (*model.FollowUpCampaign, error) {
	if _, err := s.ownedCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	if p.Subject == "" || p.Body == "" {
		return nil, fmt.Errorf("subject and body templates are required")
	}

	sel, err := s.Segmenter.Segment(ctx, campaignID, p.EngagementThreshold)
	if err != nil {
		return nil, err
	}
	for _, e := range p.Exclusions {
		sel.Exclude(e.ContactID, e.Reason)
	}

	f := &model.FollowUpCampaign{
		CampaignID:          campaignID,
		UserID:              userID,
		Name:                p.Name,
		Subject:             p.Subject,
		Body:                p.Body,
		EngagementThreshold: p.EngagementThreshold,
		TotalSelected:       sel.SelectedCount(),
		TotalExcluded:       sel.ExcludedCount(),
		IncludeSignature:    p.IncludeSignature,
		IncludeLogo:         p.IncludeLogo,
		IsScheduled:         p.ScheduledSendDate != nil,
		ScheduledSendDate:   p.ScheduledSendDate,
	}
	if f.IsScheduled {
		f.Status = model.StatusScheduled
	}
	if err := s.FollowUpRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	if err := s.Segmenter.Snapshot(ctx, f.ID, sel); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFollowUps returns the follow-ups composed under the user's campaign.
func (s *CampaignService) ListFollowUps(ctx context.Context, userID, campaignID string) ([]*model.FollowUpCampaign, error) {
	if _, err := s.ownedCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	return s.FollowUpRepo.ListByCampaign(ctx, campaignID)
}

// ListFollowUpLogs returns the follow-up run's per-contact delivery state.
func (s *CampaignService) ListFollowUpLogs(ctx context.Context, userID, followUpID string) ([]*model.EmailLog, error) {
	f, err := s.ownedFollowUp(ctx, userID, followUpID)
	if err != nil {
		return nil, err
	}
	return s.LogRepo.ListByContext(ctx, model.FollowUpSend(followUpID, f.CampaignID))
}

// ListExclusions returns the persisted audit trail of who was manually
// removed from the follow-up audience and why.
func (s *CampaignService) ListExclusions(ctx context.Context, userID, followUpID string) ([]*model.ContactExclusion, error) {
	if _, err := s.ownedFollowUp(ctx, userID, followUpID); err != nil {
		return nil, err
	}
	return s.ExclusionRepo.ListByFollowUp(ctx, followUpID)
}

// EnqueueCampaignRun hands the campaign to the worker queue. The status
// flips to sending immediately so the UI reflects the queued run.
func (s *CampaignService) EnqueueCampaignRun(ctx context.Context, userID, campaignID string) error {
	campaign, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == model.StatusCompleted || campaign.Status == model.StatusFailed {
		return fmt.Errorf("campaign cannot be sent in status: %s", campaign.Status)
	}
	if err := s.CampaignRepo.UpdateStatus(ctx, campaignID, model.StatusSending); err != nil {
		return err
	}
	return s.Queue.PublishRun(queue.RunJob{
		RunType:    queue.RunTypeCampaign,
		CampaignID: campaignID,
		UserID:     campaign.UserID,
	})
}

func (s *CampaignService) EnqueueFollowUpRun(ctx context.Context, userID, followUpID string) error {
	followUp, err := s.ownedFollowUp(ctx, userID, followUpID)
	if err != nil {
		return err
	}
	if followUp.Status == model.StatusCompleted || followUp.Status == model.StatusFailed {
		return fmt.Errorf("follow-up cannot be sent in status: %s", followUp.Status)
	}
	if err := s.FollowUpRepo.UpdateStatus(ctx, followUpID, model.StatusSending); err != nil {
		return err
	}
	return s.Queue.PublishRun(queue.RunJob{
		RunType:            queue.RunTypeFollowUp,
		FollowUpCampaignID: followUpID,
		UserID:             followUp.UserID,
	})
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/mailer"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/queue"
)

// In-memory repository fakes shared by the service tests.

type fakeCampaignRepo struct {
	campaigns map[string]*model.Campaign
	finalized map[string]string // id -> status
}

func newFakeCampaignRepo(campaigns ...*model.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{campaigns: map[string]*model.Campaign{}, finalized: map[string]string{}}
	for _, c := range campaigns {
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *fakeCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = fmt.Sprintf("campaign-%d", len(r.campaigns)+1)
	}
	r.campaigns[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (r *fakeCampaignRepo) ListByUser(_ context.Context, userID string) ([]*model.Campaign, error) {
	out := []*model.Campaign{}
	for _, c := range r.campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	r.campaigns[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) UpdateStatus(_ context.Context, id, status string) error {
	if c, ok := r.campaigns[id]; ok {
		c.Status = status
	}
	return nil
}

func (r *fakeCampaignRepo) FinalizeRun(_ context.Context, id, status string, sentCount, failedCount int) error {
	if c, ok := r.campaigns[id]; ok {
		c.Status = status
		c.SentCount = sentCount
		c.FailedCount = failedCount
	}
	r.finalized[id] = status
	return nil
}

func (r *fakeCampaignRepo) DueScheduled(_ context.Context, now time.Time) ([]*model.Campaign, error) {
	out := []*model.Campaign{}
	for _, c := range r.campaigns {
		if c.Status == model.StatusScheduled && c.IsScheduled && c.ScheduledSendDate != nil && !c.ScheduledSendDate.After(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeFollowUpRepo struct {
	followUps map[string]*model.FollowUpCampaign
	finalized map[string]string
}

func newFakeFollowUpRepo(followUps ...*model.FollowUpCampaign) *fakeFollowUpRepo {
	r := &fakeFollowUpRepo{followUps: map[string]*model.FollowUpCampaign{}, finalized: map[string]string{}}
	for _, f := range followUps {
		r.followUps[f.ID] = f
	}
	return r
}

func (r *fakeFollowUpRepo) Create(_ context.Context, f *model.FollowUpCampaign) error {
	if f.ID == "" {
		f.ID = fmt.Sprintf("follow-up-%d", len(r.followUps)+1)
	}
	r.followUps[f.ID] = f
	return nil
}

func (r *fakeFollowUpRepo) GetByID(_ context.Context, id string) (*model.FollowUpCampaign, error) {
	f, ok := r.followUps[id]
	if !ok {
		return nil, appErrors.NewFollowUpNotFound(id)
	}
	return f, nil
}

func (r *fakeFollowUpRepo) ListByCampaign(_ context.Context, campaignID string) ([]*model.FollowUpCampaign, error) {
	out := []*model.FollowUpCampaign{}
	for _, f := range r.followUps {
		if f.CampaignID == campaignID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFollowUpRepo) UpdateStatus(_ context.Context, id, status string) error {
	if f, ok := r.followUps[id]; ok {
		f.Status = status
	}
	return nil
}

func (r *fakeFollowUpRepo) FinalizeRun(_ context.Context, id, status string, sentCount, failedCount int) error {
	if f, ok := r.followUps[id]; ok {
		f.Status = status
		f.SentCount = sentCount
		f.FailedCount = failedCount
	}
	r.finalized[id] = status
	return nil
}

func (r *fakeFollowUpRepo) DueScheduled(_ context.Context, now time.Time) ([]*model.FollowUpCampaign, error) {
	out := []*model.FollowUpCampaign{}
	for _, f := range r.followUps {
		if f.Status == model.StatusScheduled && f.IsScheduled && f.ScheduledSendDate != nil && !f.ScheduledSendDate.After(now) {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeContactRepo struct {
	contacts []*model.Contact
}

func (r *fakeContactRepo) BulkCreate(_ context.Context, contacts []*model.Contact) error {
	for i, c := range contacts {
		if c.ID == "" {
			c.ID = fmt.Sprintf("contact-%d", len(r.contacts)+i+1)
		}
	}
	r.contacts = append(r.contacts, contacts...)
	return nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, id string) (*model.Contact, error) {
	for _, c := range r.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeContactRepo) ListByCampaign(_ context.Context, campaignID string) ([]*model.Contact, error) {
	out := []*model.Contact{}
	for _, c := range r.contacts {
		if c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	mu    sync.Mutex
	logs  []*model.EmailLog
	opens []*model.EmailOpen

	createErr    error
	createErrs   int // fail CreatePending this many times before succeeding
	markSentErrs int // fail MarkSent this many times before succeeding
}

func (r *fakeLogRepo) CreatePending(_ context.Context, log *model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.createErrs > 0 {
		r.createErrs--
		return fmt.Errorf("insert refused")
	}
	if log.ID == "" {
		log.ID = fmt.Sprintf("log-%d", len(r.logs)+1)
	}
	log.Status = model.StatusPending
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeLogRepo) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markSentErrs > 0 {
		r.markSentErrs--
		return fmt.Errorf("write refused")
	}
	for _, l := range r.logs {
		if l.ID == id {
			l.Status = model.StatusSent
			l.SentAt = &sentAt
			l.ErrorMessage = ""
		}
	}
	return nil
}

func (r *fakeLogRepo) MarkFailed(_ context.Context, id, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.ID == id {
			l.Status = model.StatusFailed
			l.ErrorMessage = errorMessage
		}
	}
	return nil
}

func (r *fakeLogRepo) GetByTrackingPixelID(_ context.Context, trackingID string) (*model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.TrackingPixelID == trackingID {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLogRepo) RecordOpen(_ context.Context, open *model.EmailOpen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if open.ID == "" {
		open.ID = fmt.Sprintf("open-%d", len(r.opens)+1)
	}
	r.opens = append(r.opens, open)
	for _, l := range r.logs {
		if l.ID == open.EmailLogID {
			l.OpenedCount++
			if l.FirstOpenedAt == nil {
				at := open.OpenedAt
				l.FirstOpenedAt = &at
			}
			at := open.OpenedAt
			l.LastOpenedAt = &at
		}
	}
	return nil
}

func (r *fakeLogRepo) TerminalOutcomes(_ context.Context, sendCtx model.SendContext) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcomes := map[string]string{}
	for _, l := range r.logs {
		if matchesContext(l, sendCtx) && l.Terminal() {
			outcomes[l.ContactID] = l.Status
		}
	}
	return outcomes, nil
}

func (r *fakeLogRepo) OpenCountsByCampaign(_ context.Context, campaignID string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, l := range r.logs {
		if l.CampaignID == campaignID && l.FollowUpCampaignID == nil {
			counts[l.ContactID] += l.OpenedCount
		}
	}
	return counts, nil
}

func (r *fakeLogRepo) ListByContext(_ context.Context, sendCtx model.SendContext) ([]*model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.EmailLog{}
	for _, l := range r.logs {
		if matchesContext(l, sendCtx) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) ListOpensByLog(_ context.Context, emailLogID string) ([]*model.EmailOpen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.EmailOpen{}
	for _, o := range r.opens {
		if o.EmailLogID == emailLogID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) StatusCounts(_ context.Context, sendCtx model.SendContext) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{
		model.StatusPending: 0,
		model.StatusSent:    0,
		model.StatusFailed:  0,
	}
	for _, l := range r.logs {
		if matchesContext(l, sendCtx) {
			counts[l.Status]++
		}
	}
	return counts, nil
}

func matchesContext(l *model.EmailLog, sendCtx model.SendContext) bool {
	if sendCtx.IsFollowUp() {
		return l.FollowUpCampaignID != nil && *l.FollowUpCampaignID == sendCtx.FollowUpID()
	}
	return l.CampaignID == sendCtx.CampaignID() && l.FollowUpCampaignID == nil
}

type fakeSettingsRepo struct {
	settings *model.SMTPSettings
	profile  *model.UserProfile
}

func (r *fakeSettingsRepo) GetSMTPSettings(_ context.Context, _ string) (*model.SMTPSettings, error) {
	return r.settings, nil
}

func (r *fakeSettingsRepo) UpsertSMTPSettings(_ context.Context, s *model.SMTPSettings) error {
	r.settings = s
	return nil
}

func (r *fakeSettingsRepo) GetProfile(_ context.Context, _ string) (*model.UserProfile, error) {
	return r.profile, nil
}

func (r *fakeSettingsRepo) UpsertProfile(_ context.Context, p *model.UserProfile) error {
	r.profile = p
	return nil
}

type fakeExclusionRepo struct {
	rows []*model.ContactExclusion
}

func (r *fakeExclusionRepo) CreateMany(_ context.Context, exclusions []*model.ContactExclusion) error {
	r.rows = append(r.rows, exclusions...)
	return nil
}

func (r *fakeExclusionRepo) ListContactIDs(_ context.Context, followUpCampaignID string) (map[string]bool, error) {
	excluded := map[string]bool{}
	for _, e := range r.rows {
		if e.FollowUpCampaignID == followUpCampaignID {
			excluded[e.ContactID] = true
		}
	}
	return excluded, nil
}

func (r *fakeExclusionRepo) ListByFollowUp(_ context.Context, followUpCampaignID string) ([]*model.ContactExclusion, error) {
	out := []*model.ContactExclusion{}
	for _, e := range r.rows {
		if e.FollowUpCampaignID == followUpCampaignID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeTransport records sends in order and fails configured recipients.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error // recipient email -> error
}

func (t *fakeTransport) Send(_ context.Context, _ *model.SMTPSettings, msg mailer.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.failFor[msg.To]; ok {
		return err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *fakeTransport) recipients() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []string{}
	for _, m := range t.sent {
		out = append(out, m.To)
	}
	return out
}

type fakePublisher struct {
	jobs []queue.RunJob
}

func (p *fakePublisher) PublishRun(job queue.RunJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

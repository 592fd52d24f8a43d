package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/model"
)

type fakeTickLock struct {
	held     bool
	acquired int
	released int
}

func (l *fakeTickLock) Acquire(context.Context) (bool, error) {
	l.acquired++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeTickLock) Release(context.Context) {
	l.released++
	l.held = false
}

func newSchedulerEnv() (*Scheduler, *dispatcherEnv, *fakeTickLock) {
	env := newDispatcherEnv()
	lock := &fakeTickLock{}
	sched := NewScheduler(env.campaigns, env.followUps, env.dispatcher, lock, logger.Nop())
	return sched, env, lock
}

func TestTickRunsDueCampaigns(t *testing.T) {
	sched, env, lock := newSchedulerEnv()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := env.seedCampaign(2)
	due.Status = model.StatusScheduled
	due.IsScheduled = true
	due.ScheduledSendDate = &past

	env.campaigns.campaigns["campaign-2"] = &model.Campaign{
		ID: "campaign-2", UserID: "user-1", Subject: "s", Body: "b",
		Status: model.StatusScheduled, IsScheduled: true, ScheduledSendDate: &future,
	}

	summary, err := sched.Tick(context.Background(), now)
	require.NoError(t, err)

	assert.False(t, summary.Skipped)
	assert.Equal(t, 1, summary.Processed.Campaigns)
	require.Len(t, summary.Results.Campaigns, 1)
	assert.Equal(t, "campaign-1", summary.Results.Campaigns[0].ID)
	assert.Equal(t, 2, summary.Results.Campaigns[0].Sent)
	assert.Equal(t, model.StatusCompleted, env.campaigns.campaigns["campaign-1"].Status)

	// The future campaign stays untouched.
	assert.Equal(t, model.StatusScheduled, env.campaigns.campaigns["campaign-2"].Status)
	assert.Equal(t, 1, lock.released)
}

func TestTickRunsDueFollowUps(t *testing.T) {
	sched, env, _ := newSchedulerEnv()

	now := time.Now()
	past := now.Add(-time.Minute)
	env.seedCampaign(1)
	env.logs.logs = append(env.logs.logs, &model.EmailLog{
		ID: "l1", CampaignID: "campaign-1", ContactID: "contact-1",
		Status: model.StatusSent, TrackingPixelID: "p1", OpenedCount: 1,
	})
	env.followUps.followUps["follow-up-1"] = &model.FollowUpCampaign{
		ID: "follow-up-1", CampaignID: "campaign-1", UserID: "user-1",
		Subject: "s", Body: "b", EngagementThreshold: 1,
		Status: model.StatusScheduled, IsScheduled: true, ScheduledSendDate: &past,
	}

	summary, err := sched.Tick(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed.FollowUps)
	require.Len(t, summary.Results.FollowUps, 1)
	assert.Equal(t, 1, summary.Results.FollowUps[0].Sent)
	assert.Equal(t, model.StatusCompleted, env.followUps.followUps["follow-up-1"].Status)
}

func TestTickSkipsWhenLockHeld(t *testing.T) {
	sched, env, lock := newSchedulerEnv()
	lock.held = true

	past := time.Now().Add(-time.Hour)
	due := env.seedCampaign(1)
	due.Status = model.StatusScheduled
	due.IsScheduled = true
	due.ScheduledSendDate = &past

	summary, err := sched.Tick(context.Background(), time.Now())
	require.NoError(t, err)

	assert.True(t, summary.Skipped)
	assert.Empty(t, env.transport.sent)
	assert.Equal(t, 0, lock.released)
}

func TestTickCapturesPerItemErrors(t *testing.T) {
	sched, env, _ := newSchedulerEnv()

	now := time.Now()
	past := now.Add(-time.Hour)
	due := env.seedCampaign(1)
	due.Status = model.StatusScheduled
	due.IsScheduled = true
	due.ScheduledSendDate = &past

	// Missing SMTP settings makes the run itself error out; the tick still
	// returns a summary with the failure attached to the item.
	env.settings.settings = nil

	summary, err := sched.Tick(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, summary.Results.Campaigns, 1)
	assert.NotEmpty(t, summary.Results.Campaigns[0].Error)
}

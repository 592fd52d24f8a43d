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

func newRecorderEnv(logs ...*model.EmailLog) (*OpenRecorder, *fakeLogRepo) {
	repo := &fakeLogRepo{logs: logs}
	return NewOpenRecorder(repo, logger.Nop()), repo
}

func TestRecordOpenAppendsEventAndBumpsAggregates(t *testing.T) {
	followUpID := "follow-up-1"
	rec, repo := newRecorderEnv(&model.EmailLog{
		ID: "log-1", CampaignID: "campaign-1", FollowUpCampaignID: &followUpID,
		ContactID: "contact-1", UserID: "user-1", Status: model.StatusSent,
		TrackingPixelID: "pix-1",
	})

	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return first }
	rec.RecordOpen(context.Background(), "pix-1")

	second := first.Add(time.Hour)
	rec.now = func() time.Time { return second }
	rec.RecordOpen(context.Background(), "pix-1")

	require.Len(t, repo.opens, 2)
	open := repo.opens[0]
	assert.Equal(t, "log-1", open.EmailLogID)
	assert.Equal(t, "campaign-1", open.CampaignID)
	assert.Equal(t, &followUpID, open.FollowUpCampaignID)
	assert.Equal(t, "contact-1", open.ContactID)
	assert.Equal(t, "user-1", open.UserID)

	log := repo.logs[0]
	assert.Equal(t, 2, log.OpenedCount)
	assert.Equal(t, first, *log.FirstOpenedAt)
	assert.Equal(t, second, *log.LastOpenedAt)
}

func TestRecordOpenEveryFetchCounts(t *testing.T) {
	rec, repo := newRecorderEnv(&model.EmailLog{
		ID: "log-1", CampaignID: "campaign-1", ContactID: "contact-1",
		Status: model.StatusSent, TrackingPixelID: "pix-1",
	})

	// No dedup window: five fetches are five opens.
	for i := 0; i < 5; i++ {
		rec.RecordOpen(context.Background(), "pix-1")
	}
	assert.Len(t, repo.opens, 5)
	assert.Equal(t, 5, repo.logs[0].OpenedCount)
}

func TestRecordOpenUnknownIDIsNoOp(t *testing.T) {
	rec, repo := newRecorderEnv()

	rec.RecordOpen(context.Background(), "never-issued")
	rec.RecordOpen(context.Background(), "")

	assert.Empty(t, repo.opens)
}

func TestRecordOpenOnPendingLogStillCounts(t *testing.T) {
	// The pixel can be fetched while the log is still pending (the row lands
	// before the transport call); the open is recorded regardless of status.
	rec, repo := newRecorderEnv(&model.EmailLog{
		ID: "log-1", CampaignID: "campaign-1", ContactID: "contact-1",
		Status: model.StatusPending, TrackingPixelID: "pix-1",
	})

	rec.RecordOpen(context.Background(), "pix-1")
	assert.Len(t, repo.opens, 1)
	assert.Equal(t, 1, repo.logs[0].OpenedCount)
}

// internal/service/recorder.go
package service

import (
	"context"
	"time"

	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/repository"
)

// OpenRecorder turns tracking pixel fetches into open events. Each fetch is
// a distinct open; there is no dedup window. Every failure path is swallowed
// here because the caller is an uncontrolled mail client that must always
// receive a valid image.
type OpenRecorder struct {
	LogRepo repository.EmailLogRepositoryInterface
	Log     *logger.Logger

	now func() time.Time
}

func NewOpenRecorder(logRepo repository.EmailLogRepositoryInterface, log *logger.Logger) *OpenRecorder {
	return &OpenRecorder{
		LogRepo: logRepo,
		Log:     log.WithComponent("open_recorder"),
		now:     time.Now,
	}
}

// RecordOpen resolves the tracking id and appends an open event. An unknown
// or garbled id is a silent no-op: the id may belong to a log whose write
// has not landed yet, and an uncontrolled client must never see an error.
func (r *OpenRecorder) RecordOpen(ctx context.Context, trackingID string) {
	if trackingID == "" {
		return
	}

	emailLog, err := r.LogRepo.GetByTrackingPixelID(ctx, trackingID)
	if err != nil {
		r.Log.Error().Err(err).Str("tracking_id", trackingID).Msg("email log lookup failed")
		return
	}
	if emailLog == nil {
		r.Log.Debug().Str("tracking_id", trackingID).Msg("no email log for tracking id")
		return
	}

	open := &model.EmailOpen{
		EmailLogID:         emailLog.ID,
		CampaignID:         emailLog.CampaignID,
		FollowUpCampaignID: emailLog.FollowUpCampaignID,
		ContactID:          emailLog.ContactID,
		UserID:             emailLog.UserID,
		OpenedAt:           r.now(),
	}

	if err := r.LogRepo.RecordOpen(ctx, open); err != nil {
		r.Log.Error().Err(err).Str("email_log_id", emailLog.ID).Msg("failed to record open")
	}
}

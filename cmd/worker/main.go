// cmd/worker/main.go
package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/wishsend/wishsend-backend/internal/config"
	"github.com/wishsend/wishsend-backend/internal/db"
	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/mailer"
	"github.com/wishsend/wishsend-backend/internal/queue"
	"github.com/wishsend/wishsend-backend/internal/repository"
	"github.com/wishsend/wishsend-backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format).WithComponent("worker")

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer conn.Close()

	runQueue, err := queue.Dial(cfg.AMQP.URL, cfg.AMQP.Queue, log)
	if err != nil {
		log.Fatal().Err(err).Msg("queue connection failed")
	}
	defer runQueue.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	followUpRepo := &repository.FollowUpRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	logRepo := &repository.EmailLogRepository{DB: conn}
	settingsRepo := &repository.SettingsRepository{DB: conn}
	exclusionRepo := &repository.ExclusionRepository{DB: conn}

	dispatcher := service.NewDispatcher(
		campaignRepo, followUpRepo, contactRepo, logRepo, settingsRepo, exclusionRepo,
		mailer.NewSMTPTransport(), cfg.Mailer.TrackingBaseURL, cfg.Mailer.SendDelay, log,
	)

	log.Info().Str("queue", cfg.AMQP.Queue).Msg("worker running, waiting for runs")
	err = runQueue.Consume(func(job queue.RunJob) error {
		ctx := context.Background()
		jobLog := log.WithUserID(job.UserID)
		switch job.RunType {
		case queue.RunTypeCampaign:
			result, err := dispatcher.RunCampaign(ctx, job.CampaignID)
			if err != nil {
				return err
			}
			jobLog.Info().Str("campaign_id", job.CampaignID).
				Int("sent", result.Sent).Int("failed", result.Failed).Int("resumed", result.Resumed).
				Str("status", result.Status).Msg("campaign run finished")
			return nil
		case queue.RunTypeFollowUp:
			result, err := dispatcher.RunFollowUp(ctx, job.FollowUpCampaignID)
			if err != nil {
				return err
			}
			jobLog.Info().Str("follow_up_id", job.FollowUpCampaignID).
				Int("sent", result.Sent).Int("failed", result.Failed).Int("resumed", result.Resumed).
				Str("status", result.Status).Msg("follow-up run finished")
			return nil
		default:
			return fmt.Errorf("unknown run type: %q", job.RunType)
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
}

// internal/service/scheduler.go
package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/repository"
)

// TickLock serializes scheduler ticks. Overlapping cron fires and concurrent
// manual triggers must not both pick up the same due campaign.
type TickLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// RedisTickLock is a claim lock over SETNX with a TTL, so a crashed holder
// cannot wedge the scheduler forever.
type RedisTickLock struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func NewRedisTickLock(client *redis.Client) *RedisTickLock {
	return &RedisTickLock{Client: client, Key: "scheduler:tick", TTL: 10 * time.Minute}
}

func (l *RedisTickLock) Acquire(ctx context.Context) (bool, error) {
	return l.Client.SetNX(ctx, l.Key, time.Now().Unix(), l.TTL).Result()
}

func (l *RedisTickLock) Release(ctx context.Context) {
	l.Client.Del(ctx, l.Key)
}

// RunSummary is the per-item entry in a tick's results.
type RunSummary struct {
	ID     string `json:"id"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TickSummary reports what one scheduler pass processed.
type TickSummary struct {
	Skipped   bool `json:"skipped,omitempty"`
	Processed struct {
		Campaigns int `json:"campaigns"`
		FollowUps int `json:"followUps"`
	} `json:"processed"`
	Results struct {
		Campaigns []RunSummary `json:"campaigns"`
		FollowUps []RunSummary `json:"followUps"`
	} `json:"results"`
}

// Scheduler polls for due scheduled campaigns and follow-ups and runs the
// dispatcher headlessly with the owning user's stored SMTP credentials.
type Scheduler struct {
	CampaignRepo repository.CampaignRepositoryInterface
	FollowUpRepo repository.FollowUpRepositoryInterface
	Dispatcher   *Dispatcher
	Lock         TickLock
	Log          *logger.Logger
}

func NewScheduler(
	campaignRepo repository.CampaignRepositoryInterface,
	followUpRepo repository.FollowUpRepositoryInterface,
	dispatcher *Dispatcher,
	lock TickLock,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		CampaignRepo: campaignRepo,
		FollowUpRepo: followUpRepo,
		Dispatcher:   dispatcher,
		Lock:         lock,
		Log:          log.WithComponent("scheduler"),
	}
}

// Tick processes every campaign and follow-up whose scheduled send date has
// passed. A per-item failure is logged and skipped; the rest of the batch
// still runs.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (*TickSummary, error) {
	summary := &TickSummary{}
	summary.Results.Campaigns = []RunSummary{}
	summary.Results.FollowUps = []RunSummary{}

	if s.Lock != nil {
		acquired, err := s.Lock.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		if !acquired {
			s.Log.Info().Msg("tick already in progress, skipping")
			summary.Skipped = true
			return summary, nil
		}
		defer s.Lock.Release(ctx)
	}

	campaigns, err := s.CampaignRepo.DueScheduled(ctx, now)
	if err != nil {
		return nil, err
	}
	followUps, err := s.FollowUpRepo.DueScheduled(ctx, now)
	if err != nil {
		return nil, err
	}

	summary.Processed.Campaigns = len(campaigns)
	summary.Processed.FollowUps = len(followUps)

	for _, campaign := range campaigns {
		result, err := s.Dispatcher.RunCampaign(ctx, campaign.ID)
		if err != nil {
			s.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("scheduled campaign run failed")
			summary.Results.Campaigns = append(summary.Results.Campaigns, RunSummary{ID: campaign.ID, Error: err.Error()})
			continue
		}
		summary.Results.Campaigns = append(summary.Results.Campaigns, RunSummary{
			ID: campaign.ID, Sent: result.Sent, Failed: result.Failed, Status: result.Status,
		})
	}

	for _, followUp := range followUps {
		result, err := s.Dispatcher.RunFollowUp(ctx, followUp.ID)
		if err != nil {
			s.Log.Error().Err(err).Str("follow_up_id", followUp.ID).Msg("scheduled follow-up run failed")
			summary.Results.FollowUps = append(summary.Results.FollowUps, RunSummary{ID: followUp.ID, Error: err.Error()})
			continue
		}
		summary.Results.FollowUps = append(summary.Results.FollowUps, RunSummary{
			ID: followUp.ID, Sent: result.Sent, Failed: result.Failed, Status: result.Status,
		})
	}

	return summary, nil
}

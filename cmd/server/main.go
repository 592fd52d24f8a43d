// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/wishsend/wishsend-backend/internal/config"
	"github.com/wishsend/wishsend-backend/internal/db"
	"github.com/wishsend/wishsend-backend/internal/handler"
	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/mailer"
	"github.com/wishsend/wishsend-backend/internal/middleware"
	"github.com/wishsend/wishsend-backend/internal/queue"
	"github.com/wishsend/wishsend-backend/internal/repository"
	"github.com/wishsend/wishsend-backend/internal/service"
)

func main() {
	// Missing .env just means the OS environment carries everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer conn.Close()

	redisClient, err := db.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()

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

	segmenter := service.NewSegmenter(contactRepo, logRepo, exclusionRepo)
	campaignService := &service.CampaignService{
		CampaignRepo:  campaignRepo,
		FollowUpRepo:  followUpRepo,
		ContactRepo:   contactRepo,
		LogRepo:       logRepo,
		SettingsRepo:  settingsRepo,
		ExclusionRepo: exclusionRepo,
		Segmenter:     segmenter,
		Queue:         runQueue,
	}
	dispatcher := service.NewDispatcher(
		campaignRepo, followUpRepo, contactRepo, logRepo, settingsRepo, exclusionRepo,
		mailer.NewSMTPTransport(), cfg.Mailer.TrackingBaseURL, cfg.Mailer.SendDelay, log,
	)
	recorder := service.NewOpenRecorder(logRepo, log)
	scheduler := service.NewScheduler(campaignRepo, followUpRepo, dispatcher, service.NewRedisTickLock(redisClient), log)

	campaignHandler := &handler.CampaignHandler{Service: campaignService}
	followUpHandler := &handler.FollowUpHandler{Service: campaignService}
	sendHandler := &handler.SendHandler{Dispatcher: dispatcher}
	scheduleHandler := &handler.ScheduleHandler{Scheduler: scheduler}
	settingsHandler := &handler.SettingsHandler{Repo: settingsRepo}
	trackHandler := &handler.TrackHandler{Recorder: recorder}

	// The scheduled-send pass also runs in-process; the redis lock keeps
	// multiple server instances from racing each other.
	c := cron.New()
	if _, err := c.AddFunc(cfg.Mailer.ScheduleSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := scheduler.Tick(ctx, time.Now()); err != nil {
			log.Error().Err(err).Msg("scheduler tick failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Mailer.ScheduleSpec).Msg("invalid schedule spec")
	}
	c.Start()
	defer c.Stop()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	// The pixel endpoint stays public: mail clients carry no credentials.
	r.Get("/track-email-open", trackHandler.ServeOpen)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret, log))

		r.Post("/campaigns", campaignHandler.CreateCampaign)
		r.Get("/campaigns", campaignHandler.ListCampaigns)
		r.Get("/campaigns/{id}", campaignHandler.GetCampaign)
		r.Put("/campaigns/{id}", campaignHandler.UpdateCampaign)
		r.Post("/campaigns/{id}/contacts", campaignHandler.AddContacts)
		r.Post("/campaigns/{id}/send", campaignHandler.SendCampaign)
		r.Post("/campaigns/{id}/preview", campaignHandler.Preview)
		r.Get("/campaigns/{id}/logs", campaignHandler.ListLogs)
		r.Get("/campaigns/{id}/logs/{logID}/opens", campaignHandler.ListOpens)

		r.Get("/campaigns/{id}/engagement", followUpHandler.Engagement)
		r.Post("/campaigns/{id}/follow-ups", followUpHandler.CreateFollowUp)
		r.Get("/campaigns/{id}/follow-ups", followUpHandler.ListFollowUps)
		r.Post("/campaigns/{id}/follow-ups/{followUpID}/send", followUpHandler.SendFollowUp)
		r.Get("/campaigns/{id}/follow-ups/{followUpID}/logs", followUpHandler.ListLogs)
		r.Get("/campaigns/{id}/follow-ups/{followUpID}/exclusions", followUpHandler.ListExclusions)

		r.Post("/send-email", sendHandler.SendEmail)
		r.Post("/process-scheduled", scheduleHandler.ProcessScheduled)

		r.Get("/settings/smtp", settingsHandler.GetSMTPSettings)
		r.Put("/settings/smtp", settingsHandler.PutSMTPSettings)
		r.Get("/settings/profile", settingsHandler.GetProfile)
		r.Put("/settings/profile", settingsHandler.PutProfile)
	})

	log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishsend/wishsend-backend/internal/logger"
	"github.com/wishsend/wishsend-backend/internal/middleware"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/queue"
	"github.com/wishsend/wishsend-backend/internal/repository"
	"github.com/wishsend/wishsend-backend/internal/service"
)

const testSecret = "test-secret"

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

// stubCampaignRepo overrides only what the send path touches.
type stubCampaignRepo struct {
	repository.CampaignRepositoryInterface
	campaign *model.Campaign
}

func (s *stubCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	return s.campaign, nil
}

func (s *stubCampaignRepo) UpdateStatus(_ context.Context, id, status string) error {
	s.campaign.Status = status
	return nil
}

type stubRunQueue struct {
	jobs []queue.RunJob
}

func (q *stubRunQueue) PublishRun(job queue.RunJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func sendCampaignRouter(repo *stubCampaignRepo, runQueue *stubRunQueue) http.Handler {
	h := &CampaignHandler{Service: &service.CampaignService{CampaignRepo: repo, Queue: runQueue}}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(testSecret, logger.Nop()))
		r.Post("/campaigns/{id}/send", h.SendCampaign)
	})
	return r
}

func TestSendCampaignQueuesRunForOwner(t *testing.T) {
	repo := &stubCampaignRepo{campaign: &model.Campaign{
		ID: "campaign-1", UserID: "user-1", Status: model.StatusDraft,
	}}
	runQueue := &stubRunQueue{}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/campaign-1/send", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := httptest.NewRecorder()
	sendCampaignRouter(repo, runQueue).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, runQueue.jobs, 1)
	assert.Equal(t, "campaign-1", runQueue.jobs[0].CampaignID)
	assert.Equal(t, "user-1", runQueue.jobs[0].UserID)
	assert.Equal(t, model.StatusSending, repo.campaign.Status)
}

func TestSendCampaignHidesOtherUsersCampaign(t *testing.T) {
	repo := &stubCampaignRepo{campaign: &model.Campaign{
		ID: "campaign-1", UserID: "user-1", Status: model.StatusDraft,
	}}
	runQueue := &stubRunQueue{}

	// A valid token for a different user must see someone else's campaign
	// as missing: nothing queued, nothing touched.
	req := httptest.NewRequest(http.MethodPost, "/campaigns/campaign-1/send", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-2"))
	rec := httptest.NewRecorder()
	sendCampaignRouter(repo, runQueue).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, runQueue.jobs)
	assert.Equal(t, model.StatusDraft, repo.campaign.Status)
}

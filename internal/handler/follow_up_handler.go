// internal/handler/follow_up_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wishsend/wishsend-backend/internal/middleware"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/service"
)

// FollowUpHandler serves the engagement segmentation and follow-up
// composer endpoints.
type FollowUpHandler struct {
	Service *service.CampaignService
}

// Engagement partitions a campaign's contacts against ?threshold= (default 1)
// so the composer can show who qualifies before anything is persisted.
func (h *FollowUpHandler) Engagement(w http.ResponseWriter, r *http.Request) {
	threshold := 1
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = n
	}

	sel, err := h.Service.Engagement(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), threshold)
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id": chi.URLParam(r, "id"),
		"threshold":   threshold,
		"selected":    sel.SelectedCount(),
		"contacts":    sel.Engagements(),
	})
}

func (h *FollowUpHandler) CreateFollowUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name                string                    `json:"name"`
		Subject             string                    `json:"subject"`
		Body                string                    `json:"body"`
		EngagementThreshold int                       `json:"engagement_threshold"`
		IncludeSignature    bool                      `json:"include_signature"`
		IncludeLogo         bool                      `json:"include_logo"`
		ScheduledSendDate   *time.Time                `json:"scheduled_send_date,omitempty"`
		Exclusions          []service.ManualExclusion `json:"exclusions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.EngagementThreshold < 0 {
		writeError(w, http.StatusBadRequest, "engagement_threshold must be non-negative")
		return
	}

	followUp, err := h.Service.CreateFollowUp(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), service.NewFollowUpParams{
		Name:                body.Name,
		Subject:             body.Subject,
		Body:                body.Body,
		EngagementThreshold: body.EngagementThreshold,
		IncludeSignature:    body.IncludeSignature,
		IncludeLogo:         body.IncludeLogo,
		ScheduledSendDate:   body.ScheduledSendDate,
		Exclusions:          body.Exclusions,
	})
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, followUp)
}

func (h *FollowUpHandler) ListFollowUps(w http.ResponseWriter, r *http.Request) {
	followUps, err := h.Service.ListFollowUps(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": followUps})
}

func (h *FollowUpHandler) SendFollowUp(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "followUpID")
	if err := h.Service.EnqueueFollowUpRun(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"follow_up_campaign_id": id,
		"status":                model.StatusSending,
	})
}

func (h *FollowUpHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.ListFollowUpLogs(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "followUpID"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": logs})
}

// ListExclusions returns the persisted audit trail of who was manually
// removed from the follow-up audience and why.
func (h *FollowUpHandler) ListExclusions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListExclusions(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "followUpID"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

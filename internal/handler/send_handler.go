// internal/handler/send_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wishsend/wishsend-backend/internal/middleware"
	"github.com/wishsend/wishsend-backend/internal/service"
)

// SendHandler serves the one-off send endpoint used by clients that drive the
// send loop themselves.
type SendHandler struct {
	Dispatcher *service.Dispatcher
}

func (h *SendHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To                 string  `json:"to"`
		Subject            string  `json:"subject"`
		Body               string  `json:"body"`
		CampaignID         string  `json:"campaign_id"`
		ContactID          string  `json:"contact_id"`
		FollowUpCampaignID *string `json:"follow_up_campaign_id,omitempty"`
		TrackingPixelID    string  `json:"tracking_pixel_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.To == "" || body.Subject == "" || body.CampaignID == "" || body.ContactID == "" {
		writeError(w, http.StatusBadRequest, "to, subject, campaign_id and contact_id are required")
		return
	}

	log, err := h.Dispatcher.SendSingle(r.Context(), middleware.UserID(r.Context()), service.SingleSendParams{
		To:                 body.To,
		Subject:            body.Subject,
		Body:               body.Body,
		CampaignID:         body.CampaignID,
		ContactID:          body.ContactID,
		FollowUpCampaignID: body.FollowUpCampaignID,
		TrackingPixelID:    body.TrackingPixelID,
	})
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

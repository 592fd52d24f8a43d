// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/middleware"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers.
type CampaignHandler struct {
	Service *service.CampaignService
}

type contactPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name              string           `json:"name"`
		Subject           string           `json:"subject"`
		Body              string           `json:"body"`
		IncludeSignature  bool             `json:"include_signature"`
		IncludeLogo       bool             `json:"include_logo"`
		ScheduledSendDate *time.Time       `json:"scheduled_send_date,omitempty"`
		Contacts          []contactPayload `json:"contacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contacts := make([]*model.Contact, 0, len(body.Contacts))
	for _, c := range body.Contacts {
		if c.FirstName == "" || c.Email == "" {
			writeError(w, http.StatusBadRequest, "every contact needs a first name and an email")
			return
		}
		contacts = append(contacts, &model.Contact{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Company:   c.Company,
		})
	}

	campaign, err := h.Service.CreateCampaign(r.Context(), middleware.UserID(r.Context()), service.NewCampaignParams{
		Name:              body.Name,
		Subject:           body.Subject,
		Body:              body.Body,
		IncludeSignature:  body.IncludeSignature,
		IncludeLogo:       body.IncludeLogo,
		ScheduledSendDate: body.ScheduledSendDate,
		Contacts:          contacts,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// UpdateCampaign edits a campaign that has not started sending.
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name              string     `json:"name"`
		Subject           string     `json:"subject"`
		Body              string     `json:"body"`
		IncludeSignature  bool       `json:"include_signature"`
		IncludeLogo       bool       `json:"include_logo"`
		ScheduledSendDate *time.Time `json:"scheduled_send_date,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := h.Service.UpdateCampaign(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), service.NewCampaignParams{
		Name:              body.Name,
		Subject:           body.Subject,
		Body:              body.Body,
		IncludeSignature:  body.IncludeSignature,
		IncludeLogo:       body.IncludeLogo,
		ScheduledSendDate: body.ScheduledSendDate,
	})
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Service.ListCampaigns(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": campaigns})
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.GetCampaignDetails(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// AddContacts bulk-uploads additional contact rows to an unsent campaign.
func (h *CampaignHandler) AddContacts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contacts []contactPayload `json:"contacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contacts := make([]*model.Contact, 0, len(body.Contacts))
	for _, c := range body.Contacts {
		if c.FirstName == "" || c.Email == "" {
			writeError(w, http.StatusBadRequest, "every contact needs a first name and an email")
			return
		}
		contacts = append(contacts, &model.Contact{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Company:   c.Company,
		})
	}

	campaign, err := h.Service.AddContacts(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), contacts)
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// SendCampaign queues the campaign run for the worker. The response is
// immediate; progress is observable through the per-contact log rows.
func (h *CampaignHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.EnqueueCampaignRun(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"campaign_id": id,
		"status":      model.StatusSending,
	})
}

func (h *CampaignHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContactID string `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject, previewBody, err := h.Service.RenderPreview(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), body.ContactID)
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"subject": subject,
		"body":    previewBody,
	})
}

// ListLogs exposes the per-contact delivery state of the original send,
// pending rows included, so a client can render live progress.
func (h *CampaignHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.ListCampaignLogs(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": logs})
}

// ListOpens returns the full open history for one email log.
func (h *CampaignHandler) ListOpens(w http.ResponseWriter, r *http.Request) {
	opens, err := h.Service.ListLogOpens(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "logID"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": opens})
}

func writeCampaignError(w http.ResponseWriter, err error) {
	var notFound *appErrors.ErrCampaignNotFound
	var fuNotFound *appErrors.ErrFollowUpNotFound
	var smtp *appErrors.ErrSMTPNotConfigured
	switch {
	case errors.As(err, &notFound), errors.As(err, &fuNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &smtp):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

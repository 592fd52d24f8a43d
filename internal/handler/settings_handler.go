// internal/handler/settings_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wishsend/wishsend-backend/internal/middleware"
	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/repository"
)

// SettingsHandler serves the per-user SMTP credentials and sender profile.
type SettingsHandler struct {
	Repo repository.SettingsRepositoryInterface
}

func (h *SettingsHandler) GetSMTPSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Repo.GetSMTPSettings(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "smtp settings not configured")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) PutSMTPSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.SMTPSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	settings.UserID = middleware.UserID(r.Context())
	if !settings.Configured() {
		writeError(w, http.StatusBadRequest, "smtp_host, smtp_port and smtp_from are required")
		return
	}
	if err := h.Repo.UpsertSMTPSettings(r.Context(), &settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Repo.GetProfile(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusOK, &model.UserProfile{UserID: middleware.UserID(r.Context())})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *SettingsHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile.UserID = middleware.UserID(r.Context())
	if err := h.Repo.UpsertProfile(r.Context(), &profile); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

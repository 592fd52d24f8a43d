// internal/handler/track_handler.go
package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/wishsend/wishsend-backend/internal/service"
)

// transparentGIF is a static 1x1 transparent GIF, the smallest payload a
// mail client will render without a broken-image icon.
var transparentGIF, _ = base64.StdEncoding.DecodeString(
	"R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

// TrackHandler serves the tracking pixel. Whatever happens internally, the
// response is always 200 with valid GIF bytes: the requester is a mail
// client rendering someone's inbox, and an error here would surface to the
// recipient.
type TrackHandler struct {
	Recorder *service.OpenRecorder
}

func (h *TrackHandler) ServeOpen(w http.ResponseWriter, r *http.Request) {
	trackingID := r.URL.Query().Get("id")
	if trackingID != "" {
		h.Recorder.RecordOpen(r.Context(), trackingID)
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	w.Write(transparentGIF)
}

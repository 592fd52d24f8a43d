// internal/handler/schedule_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/wishsend/wishsend-backend/internal/service"
)

// ScheduleHandler exposes a manual trigger for the scheduler pass, mirroring
// what the cron entry runs.
type ScheduleHandler struct {
	Scheduler *service.Scheduler
}

func (h *ScheduleHandler) ProcessScheduled(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Scheduler.Tick(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/predictor"
)

const healthTimeout = 3 * time.Second

// HealthChecker probes the prediction service.
type HealthChecker interface {
	Health(ctx context.Context) (*predictor.Health, error)
}

// HealthHandler reports service health.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates a health handler. A nil checker reports only
// local liveness.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Get always answers 200; an unreachable prediction service is reported as
// degraded rather than failing the probe.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}

	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if ph, err := h.checker.Health(ctx); err != nil {
			body["status"] = "degraded"
			body["predictor_error"] = response.Detail(err)
		} else {
			body["predictor"] = ph
		}
	}

	response.JSON(w, http.StatusOK, body)
}

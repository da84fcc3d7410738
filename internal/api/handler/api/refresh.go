package api

import (
	"net/http"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/scheduler"
)

var errNoActiveView = &core.Error{Code: "NO_ACTIVE_VIEW", Message: "no view is active"}

// RefreshController exposes the active view's scheduler.
type RefreshController interface {
	Refresh() bool
	RefreshState() (scheduler.RefreshState, bool)
}

// RefreshHandler reports and triggers refresh cycles.
type RefreshHandler struct {
	ctl RefreshController
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(ctl RefreshController) *RefreshHandler {
	return &RefreshHandler{ctl: ctl}
}

// State returns the countdown and in-flight state of the active view.
func (h *RefreshHandler) State(w http.ResponseWriter, r *http.Request) {
	st, ok := h.ctl.RefreshState()
	if !ok {
		response.Error(w, http.StatusConflict, errNoActiveView)
		return
	}
	response.JSON(w, http.StatusOK, st)
}

// Trigger starts an immediate refetch, superseding any in-flight one.
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.ctl.Refresh() {
		response.Error(w, http.StatusConflict, errNoActiveView)
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]any{"triggered": true})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/core"
)

// PreferencesStore reads and writes UI preferences.
type PreferencesStore interface {
	DarkMode(ctx context.Context) (bool, error)
	SetDarkMode(ctx context.Context, on bool) error
	ToggleDarkMode(ctx context.Context) (bool, error)
}

// PreferencesHandler handles preference API requests.
type PreferencesHandler struct {
	store PreferencesStore
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(store PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// DarkModeRequest is the request body for setting dark mode.
type DarkModeRequest struct {
	Enabled *bool `json:"enabled"`
}

// Get returns all preferences.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	dark, err := h.store.DarkMode(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"dark_mode": dark})
}

// SetDarkMode stores an explicit dark mode value.
func (h *PreferencesHandler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req DarkModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if req.Enabled == nil {
		response.Error(w, http.StatusBadRequest, core.ErrConfigMissing)
		return
	}

	if err := h.store.SetDarkMode(r.Context(), *req.Enabled); err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"dark_mode": *req.Enabled})
}

// ToggleDarkMode flips dark mode and returns the new value.
func (h *PreferencesHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	dark, err := h.store.ToggleDarkMode(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"dark_mode": dark})
}

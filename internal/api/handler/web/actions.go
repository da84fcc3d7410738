package web

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// AddSymbol handles the add form and returns to the referring page.
func (h *Handler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dash.AddSymbol(r.Context(), r.FormValue("symbol")); err != nil {
		h.back(w, r, err.Error())
		return
	}
	h.back(w, r, "")
}

// RemoveSymbol handles the per-row remove button.
func (h *Handler) RemoveSymbol(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dash.RemoveSymbol(r.Context(), r.PathValue("symbol")); err != nil {
		h.back(w, r, err.Error())
		return
	}
	h.back(w, r, "")
}

// ToggleSymbol handles the watch/unwatch button on the chart page.
func (h *Handler) ToggleSymbol(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dash.ToggleSymbol(r.Context(), r.PathValue("symbol")); err != nil {
		h.back(w, r, err.Error())
		return
	}
	h.back(w, r, "")
}

// Refresh forces a refetch of the active view.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.dash.Refresh() {
		h.back(w, r, "nothing to refresh")
		return
	}
	h.back(w, r, "")
}

// ToggleDarkMode flips the theme.
func (h *Handler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	if h.prefs != nil {
		if _, err := h.prefs.ToggleDarkMode(r.Context()); err != nil {
			h.logger.Warn("toggling dark mode", zap.Error(err))
			h.back(w, r, err.Error())
			return
		}
	}
	h.back(w, r, "")
}

// back redirects to the same-origin referer path, or home.
func (h *Handler) back(w http.ResponseWriter, r *http.Request, flash string) {
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && strings.HasPrefix(ref.Path, "/") && !strings.HasPrefix(ref.Path, "//") {
		target = ref.Path
	}
	if flash != "" {
		target += "?flash=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

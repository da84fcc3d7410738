package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/core"
)

// WatchlistService is the part of the dashboard that edits the watchlist.
type WatchlistService interface {
	Watchlist() []core.Symbol
	AddSymbol(ctx context.Context, raw string) ([]core.Symbol, error)
	RemoveSymbol(ctx context.Context, raw string) ([]core.Symbol, error)
	ToggleSymbol(ctx context.Context, raw string) ([]core.Symbol, error)
}

// WatchlistHandler handles watchlist API requests.
type WatchlistHandler struct {
	svc WatchlistService
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(svc WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{svc: svc}
}

// AddRequest is the request body for adding a symbol.
type AddRequest struct {
	Symbol string `json:"symbol"`
}

// List returns all symbols in the watchlist.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	symbols := h.svc.Watchlist()
	response.JSON(w, http.StatusOK, map[string]any{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// Add adds a symbol to the watchlist.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	sym, err := core.ParseSymbol(req.Symbol)
	if err != nil {
		response.Fail(w, err)
		return
	}

	existed := slices.Contains(h.svc.Watchlist(), sym)
	symbols, err := h.svc.AddSymbol(r.Context(), sym.String())
	if err != nil {
		response.Fail(w, err)
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	response.JSON(w, status, map[string]any{
		"symbol":  sym,
		"added":   !existed,
		"symbols": symbols,
	})
}

// Remove removes a symbol from the watchlist. Removing an absent symbol
// succeeds with removed=false.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sym, err := core.ParseSymbol(r.PathValue("symbol"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	existed := slices.Contains(h.svc.Watchlist(), sym)
	symbols, err := h.svc.RemoveSymbol(r.Context(), sym.String())
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  sym,
		"removed": existed,
		"symbols": symbols,
	})
}

// Toggle adds the symbol when absent and removes it when present.
func (h *WatchlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sym, err := core.ParseSymbol(r.PathValue("symbol"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	symbols, err := h.svc.ToggleSymbol(r.Context(), sym.String())
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  sym,
		"watched": slices.Contains(symbols, sym),
		"symbols": symbols,
	})
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/core"
)

func TestWatchlistHandler_List(t *testing.T) {
	handler := NewWatchlistHandler(&fakeWatchlist{symbols: []core.Symbol{"AAPL", "GOOG"}})

	req := httptest.NewRequest("GET", "/api/watchlist", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	data := resp.Data.(map[string]any)
	symbols := data["symbols"].([]any)
	if len(symbols) != 2 {
		t.Errorf("expected 2 symbols, got %d", len(symbols))
	}
}

func TestWatchlistHandler_Add(t *testing.T) {
	svc := &fakeWatchlist{}
	handler := NewWatchlistHandler(svc)

	body := bytes.NewBufferString(`{"symbol": " aapl "}`)
	req := httptest.NewRequest("POST", "/api/watchlist", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Add(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}

	if len(svc.symbols) != 1 || svc.symbols[0] != "AAPL" {
		t.Errorf("expected AAPL in watchlist, got %v", svc.symbols)
	}
}

func TestWatchlistHandler_Add_Existing(t *testing.T) {
	svc := &fakeWatchlist{symbols: []core.Symbol{"AAPL"}}
	handler := NewWatchlistHandler(svc)

	req := httptest.NewRequest("POST", "/api/watchlist", bytes.NewBufferString(`{"symbol": "aapl"}`))
	w := httptest.NewRecorder()

	handler.Add(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if len(svc.symbols) != 1 {
		t.Errorf("expected no duplicate, got %v", svc.symbols)
	}
}

func TestWatchlistHandler_Add_InvalidJSON(t *testing.T) {
	handler := NewWatchlistHandler(&fakeWatchlist{})

	body := bytes.NewBufferString(`{invalid json}`)
	req := httptest.NewRequest("POST", "/api/watchlist", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Add(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWatchlistHandler_Add_EmptySymbol(t *testing.T) {
	handler := NewWatchlistHandler(&fakeWatchlist{})

	body := bytes.NewBufferString(`{"symbol": "   "}`)
	req := httptest.NewRequest("POST", "/api/watchlist", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Add(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "INVALID_SYMBOL" {
		t.Errorf("expected INVALID_SYMBOL, got %s", resp.Error.Code)
	}
}

func TestWatchlistHandler_Add_PersistFailure(t *testing.T) {
	handler := NewWatchlistHandler(&fakeWatchlist{err: errDiskFull})

	req := httptest.NewRequest("POST", "/api/watchlist", bytes.NewBufferString(`{"symbol": "AAPL"}`))
	w := httptest.NewRecorder()

	handler.Add(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}

	var resp response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "PERSIST_FAILED" {
		t.Errorf("expected PERSIST_FAILED, got %s", resp.Error.Code)
	}
}

func TestWatchlistHandler_Remove(t *testing.T) {
	svc := &fakeWatchlist{symbols: []core.Symbol{"AAPL", "GOOG"}}
	handler := NewWatchlistHandler(svc)

	req := httptest.NewRequest("DELETE", "/api/watchlist/aapl", nil)
	req.SetPathValue("symbol", "aapl")
	w := httptest.NewRecorder()

	handler.Remove(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	if len(svc.symbols) != 1 || svc.symbols[0] != "GOOG" {
		t.Errorf("expected only GOOG in watchlist, got %v", svc.symbols)
	}
}

func TestWatchlistHandler_Remove_Absent(t *testing.T) {
	handler := NewWatchlistHandler(&fakeWatchlist{})

	req := httptest.NewRequest("DELETE", "/api/watchlist/AAPL", nil)
	req.SetPathValue("symbol", "AAPL")
	w := httptest.NewRecorder()

	handler.Remove(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if removed := resp.Data.(map[string]any)["removed"]; removed != false {
		t.Errorf("expected removed=false, got %v", removed)
	}
}

func TestWatchlistHandler_Toggle(t *testing.T) {
	svc := &fakeWatchlist{symbols: []core.Symbol{"AAPL"}}
	handler := NewWatchlistHandler(svc)

	for _, want := range []bool{true, false} {
		req := httptest.NewRequest("POST", "/api/watchlist/TSLA/toggle", nil)
		req.SetPathValue("symbol", "tsla")
		w := httptest.NewRecorder()

		handler.Toggle(w, req)

		var resp response.SuccessResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		if watched := resp.Data.(map[string]any)["watched"]; watched != want {
			t.Errorf("expected watched=%v, got %v", want, watched)
		}
	}

	if len(svc.symbols) != 1 {
		t.Errorf("expected toggle twice to restore list, got %v", svc.symbols)
	}
}

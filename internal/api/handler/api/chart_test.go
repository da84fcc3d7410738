package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartHandler_Get(t *testing.T) {
	rec := core.SignalRecord{Symbol: "AAPL", Direction: core.DirectionBuy, Confidence: 70}
	nav := &fakeNavigator{view: views.Chart("AAPL", &rec, nil)}
	handler := NewChartHandler(nav)

	req := httptest.NewRequest("GET", "/api/chart/aapl", nil)
	req.SetPathValue("symbol", "aapl")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []dashboard.Route{dashboard.Chart("AAPL")}, nav.routes)

	var resp struct {
		Data struct {
			Chart   views.ChartView `json:"chart"`
			Loading bool            `json:"loading"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, core.Symbol("AAPL"), resp.Data.Chart.Symbol)
	assert.False(t, resp.Data.Loading)
}

func TestChartHandler_InvalidSymbol(t *testing.T) {
	nav := &fakeNavigator{}
	handler := NewChartHandler(nav)

	req := httptest.NewRequest("GET", "/api/chart/%20", nil)
	req.SetPathValue("symbol", " ")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, nav.routes)
}

func TestChartHandler_Closed(t *testing.T) {
	handler := NewChartHandler(&fakeNavigator{err: dashboard.ErrClosed})

	req := httptest.NewRequest("GET", "/api/chart/AAPL", nil)
	req.SetPathValue("symbol", "AAPL")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

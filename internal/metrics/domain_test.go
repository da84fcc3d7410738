package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestRegistry_RecordFetch(t *testing.T) {
	reg := NewRegistry()

	reg.RecordFetch("ok", 0.2)
	reg.RecordFetch("ok", 0.3)
	reg.RecordFetch("TRANSPORT_ERROR", 1.5)

	counts := map[string]float64{}
	for _, m := range family(t, reg, "signaldeck_fetches_total").GetMetric() {
		counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts["ok"])
	assert.Equal(t, 1.0, counts["TRANSPORT_ERROR"])

	hist := family(t, reg, "signaldeck_fetch_duration_seconds").GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(3), hist.GetSampleCount())
}

func TestRegistry_RecordBatch(t *testing.T) {
	reg := NewRegistry()

	reg.RecordBatch(4, 1, 12)

	assert.Equal(t, 1.0, family(t, reg, "signaldeck_batches_total").GetMetric()[0].GetCounter().GetValue())
	hist := family(t, reg, "signaldeck_batch_failed_symbols").GetMetric()[0].GetHistogram()
	assert.Equal(t, 1.0, hist.GetSampleSum())
}

func TestRegistry_SchedulerAndAlerts(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRefreshCycle("home")
	reg.RecordStaleDiscard("home")
	reg.RecordStaleDiscard("home")
	reg.RecordAlertRouted("BUY")
	reg.RecordAlertRouted("BUY")
	reg.RecordAlertRouted("SELL")
	reg.SetWatchlistSize(4)
	reg.SetSignalSetSize(3)

	assert.Equal(t, 1.0, family(t, reg, "signaldeck_refresh_cycles_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, family(t, reg, "signaldeck_stale_results_discarded_total").GetMetric()[0].GetCounter().GetValue())
	routed := map[string]float64{}
	for _, m := range family(t, reg, "signaldeck_alerts_routed_total").GetMetric() {
		require.Len(t, m.GetLabel(), 1)
		assert.Equal(t, "direction", m.GetLabel()[0].GetName())
		routed[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"BUY": 2, "SELL": 1}, routed)
	assert.Equal(t, 4.0, family(t, reg, "signaldeck_watchlist_symbols").GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 3.0, family(t, reg, "signaldeck_signal_set_size").GetMetric()[0].GetGauge().GetValue())
}

func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	reg.SetWatchlistSize(2)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "signaldeck_watchlist_symbols 2"))
}

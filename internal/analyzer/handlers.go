package analyzer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vitalscope/vitalscope/pkg/plugin"
	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/anomalies", Handler: m.handleListAnomalies},
		{Method: "GET", Path: "/regressions", Handler: m.handleListRegressions},
		{Method: "GET", Path: "/trend/{metric}", Handler: m.handleTrend},
		{Method: "GET", Path: "/stats/{metric}", Handler: m.handleStats},
		{Method: "GET", Path: "/series", Handler: m.handleSeriesSummary},
		{Method: "DELETE", Path: "/series", Handler: m.handleClearSeries},
		{Method: "POST", Path: "/sweep", Handler: m.handleSweep},
	}
}

// handleListAnomalies returns stored anomalies, newest first.
//
//	@Summary		List anomalies
//	@Description	Returns detected anomalies, optionally filtered by metric name.
//	@Tags			analyzer
//	@Produce		json
//	@Security		BearerAuth
//	@Param			metric query string false "Metric name filter"
//	@Param			limit query int false "Maximum results" default(50)
//	@Success		200 {array} vitals.AnomalyResult
//	@Failure		500 {object} map[string]any
//	@Router			/analyzer/anomalies [get]
func (m *Module) handleListAnomalies(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	anomalies, err := m.store.ListAnomalies(r.Context(), r.URL.Query().Get("metric"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list anomalies")
		return
	}
	if anomalies == nil {
		anomalies = []vitals.AnomalyResult{}
	}
	writeJSON(w, http.StatusOK, anomalies)
}

// handleListRegressions returns stored regression alerts, newest first.
//
//	@Summary		List regressions
//	@Description	Returns regression alerts, optionally filtered by metric name.
//	@Tags			analyzer
//	@Produce		json
//	@Security		BearerAuth
//	@Param			metric query string false "Metric name filter"
//	@Param			limit query int false "Maximum results" default(50)
//	@Success		200 {array} vitals.RegressionAlert
//	@Failure		500 {object} map[string]any
//	@Router			/analyzer/regressions [get]
func (m *Module) handleListRegressions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	alerts, err := m.store.ListRegressions(r.Context(), r.URL.Query().Get("metric"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list regressions")
		return
	}
	if alerts == nil {
		alerts = []vitals.RegressionAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleTrend returns the trend summary for one series.
//
//	@Summary		Series trend
//	@Description	Returns the directional trend summary for one metric series.
//	@Tags			analyzer
//	@Produce		json
//	@Security		BearerAuth
//	@Param			metric path string true "Metric name"
//	@Param			url query string false "URL context"
//	@Success		200 {object} vitals.TrendSummary
//	@Failure		404 {object} map[string]any
//	@Router			/analyzer/trend/{metric} [get]
func (m *Module) handleTrend(w http.ResponseWriter, r *http.Request) {
	metric := r.PathValue("metric")
	if metric == "" {
		writeError(w, http.StatusBadRequest, "metric is required")
		return
	}
	summary := m.detector.AnalyzeTrend(metric, r.URL.Query().Get("url"))
	if summary == nil {
		writeError(w, http.StatusNotFound, "series unknown or has too few samples")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleStats returns descriptive statistics for one series.
//
//	@Summary		Series statistics
//	@Description	Returns descriptive statistics for one metric series.
//	@Tags			analyzer
//	@Produce		json
//	@Security		BearerAuth
//	@Param			metric path string true "Metric name"
//	@Param			url query string false "URL context"
//	@Success		200 {object} vitals.MetricStats
//	@Failure		404 {object} map[string]any
//	@Router			/analyzer/stats/{metric} [get]
func (m *Module) handleStats(w http.ResponseWriter, r *http.Request) {
	metric := r.PathValue("metric")
	if metric == "" {
		writeError(w, http.StatusBadRequest, "metric is required")
		return
	}
	stats := m.detector.SeriesStats(metric, r.URL.Query().Get("url"))
	if stats == nil {
		writeError(w, http.StatusNotFound, "series unknown or empty")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleSeriesSummary reports how many series and points are held in memory.
//
//	@Summary		Series summary
//	@Description	Returns the number of tracked series.
//	@Tags			analyzer
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {object} map[string]any
//	@Router			/analyzer/series [get]
func (m *Module) handleSeriesSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"series_count": m.detector.SeriesCount(),
	})
}

// handleClearSeries drops one series, or all series when no metric is given.
//
//	@Summary		Clear series
//	@Description	Removes one metric series, or all series when metric is omitted.
//	@Tags			analyzer
//	@Security		BearerAuth
//	@Param			metric query string false "Metric name"
//	@Param			url query string false "URL context"
//	@Success		204
//	@Router			/analyzer/series [delete]
func (m *Module) handleClearSeries(w http.ResponseWriter, r *http.Request) {
	m.detector.Clear(r.URL.Query().Get("metric"), r.URL.Query().Get("url"))
	seriesTracked.Set(float64(m.detector.SeriesCount()))
	w.WriteHeader(http.StatusNoContent)
}

// handleSweep runs a detection pass immediately instead of waiting for the
// next tick.
//
//	@Summary		Run detection sweep
//	@Description	Runs anomaly and regression detection immediately.
//	@Tags			analyzer
//	@Security		BearerAuth
//	@Success		202
//	@Router			/analyzer/sweep [post]
func (m *Module) handleSweep(w http.ResponseWriter, r *http.Request) {
	m.runSweep()
	w.WriteHeader(http.StatusAccepted)
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://vitalscope.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}

func parseLimit(r *http.Request, defaultLimit int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultLimit
}

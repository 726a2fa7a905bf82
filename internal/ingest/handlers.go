package ingest

import (
	"encoding/json"
	"net/http"

	"github.com/vitalscope/vitalscope/pkg/plugin"
	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// Routes implements plugin.HTTPProvider. Collector endpoints authenticate
// with an API key instead of a bearer token; the server's auth middleware
// exempts the ingest prefix.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/vitals", Handler: m.handleIngestSample},
		{Method: "POST", Path: "/vitals/batch", Handler: m.handleIngestBatch},
		{Method: "GET", Path: "/stats", Handler: m.handleStats},
	}
}

// handleIngestSample accepts a single metric sample.
//
//	@Summary		Ingest sample
//	@Description	Accepts one web performance metric sample from a collector.
//	@Tags			ingest
//	@Accept			json
//	@Param			X-API-Key header string false "Collector API key"
//	@Param			sample body vitals.MetricDataPoint true "Sample"
//	@Success		202
//	@Failure		400 {object} map[string]any
//	@Failure		401 {object} map[string]any
//	@Router			/ingest/vitals [post]
func (m *Module) handleIngestSample(w http.ResponseWriter, r *http.Request) {
	if !m.checkAPIKey(r.Header.Get("X-API-Key")) {
		writeError(w, http.StatusUnauthorized, "invalid or missing API key")
		return
	}

	var p vitals.MetricDataPoint
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := m.Accept(r.Context(), []vitals.MetricDataPoint{p}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleIngestBatch accepts a batch of metric samples.
//
//	@Summary		Ingest batch
//	@Description	Accepts a batch of web performance metric samples.
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			X-API-Key header string false "Collector API key"
//	@Param			samples body []vitals.MetricDataPoint true "Samples"
//	@Success		202 {object} map[string]any
//	@Failure		400 {object} map[string]any
//	@Failure		401 {object} map[string]any
//	@Router			/ingest/vitals/batch [post]
func (m *Module) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	if !m.checkAPIKey(r.Header.Get("X-API-Key")) {
		writeError(w, http.StatusUnauthorized, "invalid or missing API key")
		return
	}

	var points []vitals.MetricDataPoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := m.Accept(r.Context(), points); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"received": len(points),
	})
}

// handleStats reports intake counters.
//
//	@Summary		Ingest statistics
//	@Description	Returns accepted and rejected sample counters.
//	@Tags			ingest
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {object} map[string]any
//	@Router			/ingest/stats [get]
func (m *Module) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"accepted": m.accepted.Load(),
		"rejected": m.rejected.Load(),
	}
	if m.store != nil {
		if count, err := m.store.CountSamples(r.Context()); err == nil {
			stats["persisted"] = count
		}
	}
	writeJSON(w, http.StatusOK, stats)
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

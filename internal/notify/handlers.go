package notify

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vitalscope/vitalscope/pkg/plugin"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/channels", Handler: m.handleListChannels},
		{Method: "POST", Path: "/channels", Handler: m.handleCreateChannel},
		{Method: "DELETE", Path: "/channels/{id}", Handler: m.handleDeleteChannel},
		{Method: "GET", Path: "/deliveries", Handler: m.handleListDeliveries},
	}
}

// channelRequest is the create/update body for a notification channel.
type channelRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Config  json.RawMessage `json:"config"`
	Enabled *bool           `json:"enabled,omitempty"`
}

// handleListChannels returns all configured channels.
//
//	@Summary		List channels
//	@Description	Returns all configured notification channels.
//	@Tags			notify
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {array} NotificationChannel
//	@Failure		500 {object} map[string]any
//	@Router			/notify/channels [get]
func (m *Module) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := m.store.ListChannels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list channels")
		return
	}
	if channels == nil {
		channels = []NotificationChannel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

// handleCreateChannel registers a new notification channel.
//
//	@Summary		Create channel
//	@Description	Registers a new notification channel.
//	@Tags			notify
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			channel body channelRequest true "Channel"
//	@Success		201 {object} NotificationChannel
//	@Failure		400 {object} map[string]any
//	@Router			/notify/channels [post]
func (m *Module) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "name and type are required")
		return
	}

	now := time.Now().UTC()
	ch := NotificationChannel{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Type:      req.Type,
		Config:    string(req.Config),
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Enabled != nil {
		ch.Enabled = *req.Enabled
	}

	// Reject configs the dispatcher would fail to build later.
	if _, err := buildNotifier(ch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := m.store.UpsertChannel(r.Context(), &ch); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save channel")
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

// handleDeleteChannel removes a channel.
//
//	@Summary		Delete channel
//	@Description	Removes a notification channel.
//	@Tags			notify
//	@Security		BearerAuth
//	@Param			id path string true "Channel ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/notify/channels/{id} [delete]
func (m *Module) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := m.store.DeleteChannel(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete channel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListDeliveries returns recent delivery attempts, newest first.
//
//	@Summary		List deliveries
//	@Description	Returns recent notification delivery attempts.
//	@Tags			notify
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit query int false "Maximum results" default(50)
//	@Success		200 {array} Delivery
//	@Failure		500 {object} map[string]any
//	@Router			/notify/deliveries [get]
func (m *Module) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	deliveries, err := m.store.ListDeliveries(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list deliveries")
		return
	}
	if deliveries == nil {
		deliveries = []Delivery{}
	}
	writeJSON(w, http.StatusOK, deliveries)
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

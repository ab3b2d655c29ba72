package handlers

import (
	"net/http"

	"github.com/belphemur/storefront/internal/database"
	appSignals "github.com/belphemur/storefront/internal/signals"
)

// SettingsHandler manages the resolver settings API
type SettingsHandler struct {
	*BaseHandler
	configStore *database.ConfigStore
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(baseHandler *BaseHandler, configStore *database.ConfigStore) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler: baseHandler,
		configStore: configStore,
	}
}

// RegisterRoutes registers settings related routes
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/settings", h.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.handleUpdateSettings)
}

// SettingsResponse is the body of GET and PUT /api/settings
type SettingsResponse struct {
	SearchAfterClose bool   `json:"searchAfterClose"`
	Timezone         string `json:"timezone"`
}

// handleGetSettings reports the settings currently applied to the resolver
func (h *SettingsHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	handlerLogger := h.logger.With().Str("handler", "handleGetSettings").Logger()

	cfg := h.RuntimeConfig.Config()
	h.WriteJSON(w, http.StatusOK, SettingsResponse{
		SearchAfterClose: cfg.Hours.SearchAfterClose,
		Timezone:         cfg.Service.Timezone,
	}, handlerLogger)
}

// handleUpdateSettings persists new settings and applies them without a restart
func (h *SettingsHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	handlerLogger := h.logger.With().Str("handler", "handleUpdateSettings").Logger()
	handlerLogger.Info().Msg("Handling settings update")

	if !h.RequireAdmin(w, r, handlerLogger) {
		return
	}

	var req UpdateSettingsRequest
	if !h.DecodeAndValidate(w, r, &req, handlerLogger) {
		return
	}
	searchAfterClose := *req.SearchAfterClose

	if err := h.configStore.SaveSettings(searchAfterClose, req.Timezone); err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to save settings")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedSaveSettings, handlerLogger)
		return
	}

	if err := h.RuntimeConfig.Update(searchAfterClose, req.Timezone); err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to apply settings")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedApplySettings, handlerLogger)
		return
	}

	handlerLogger.Info().
		Bool("search_after_close", searchAfterClose).
		Str("timezone", req.Timezone).
		Msg("Settings updated")
	appSignals.EmitSettingsUpdated(r.Context(), searchAfterClose, req.Timezone)

	h.WriteJSON(w, http.StatusOK, SettingsResponse{
		SearchAfterClose: searchAfterClose,
		Timezone:         req.Timezone,
	}, handlerLogger)
}

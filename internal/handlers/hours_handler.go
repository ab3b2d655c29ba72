package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/belphemur/storefront/internal/database"
	"github.com/belphemur/storefront/internal/hours"
	appSignals "github.com/belphemur/storefront/internal/signals"
)

// HoursHandler manages business hours and availability endpoints
type HoursHandler struct {
	*BaseHandler
}

// NewHoursHandler creates a new business hours handler
func NewHoursHandler(baseHandler *BaseHandler) *HoursHandler {
	return &HoursHandler{
		BaseHandler: baseHandler,
	}
}

// RegisterRoutes registers business hours related routes
func (h *HoursHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/shops/{id}/status", h.handleStatus)
	mux.HandleFunc("GET /api/shops/{id}/hours", h.handleGetHours)
	mux.HandleFunc("PUT /api/shops/{id}/hours", h.handleUpdateHours)
}

// StatusResponse is the body of GET /api/shops/{id}/status
type StatusResponse struct {
	ShopID           string             `json:"shopId"`
	At               time.Time          `json:"at"`
	SearchAfterClose bool               `json:"searchAfterClose"`
	Status           hours.Status       `json:"status"`
	Hours            []hours.SummaryRow `json:"hours"`
}

// HoursResponse is the body of GET and PUT /api/shops/{id}/hours
type HoursResponse struct {
	ShopID string               `json:"shopId"`
	Hours  hours.WeeklySchedule `json:"hours"`
}

// resolveAt reads the optional at query parameter, defaulting to the handler clock.
// The instant is always viewed in the storefront timezone.
func (h *HoursHandler) resolveAt(r *http.Request) (time.Time, error) {
	at := r.URL.Query().Get("at")
	if at == "" {
		return h.CurrentTime(), nil
	}
	parsed, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, err
	}
	return h.RuntimeConfig.Now(parsed), nil
}

// loadHours writes the matching error response and returns false when hours cannot be loaded
func (h *HoursHandler) loadHours(w http.ResponseWriter, r *http.Request, shopID string) (hours.WeeklySchedule, bool) {
	handlerLogger := h.logger.With().Str("shop_id", shopID).Logger()
	schedule, err := h.ShopStore.GetBusinessHours(r.Context(), shopID)
	if errors.Is(err, database.ErrShopNotFound) {
		h.WriteError(w, http.StatusNotFound, ErrCodeShopNotFound, handlerLogger)
		return nil, false
	}
	if err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to load business hours")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedLoadHours, handlerLogger)
		return nil, false
	}
	return schedule, true
}

func (h *HoursHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	shopID := r.PathValue("id")
	handlerLogger := h.logger.With().Str("handler", "handleStatus").Str("shop_id", shopID).Logger()

	now, err := h.resolveAt(r)
	if err != nil {
		handlerLogger.Warn().Err(err).Str("at", r.URL.Query().Get("at")).Msg("Invalid at parameter")
		h.WriteError(w, http.StatusBadRequest, ErrCodeInvalidTime, handlerLogger, err.Error())
		return
	}

	schedule, ok := h.loadHours(w, r, shopID)
	if !ok {
		return
	}

	resolver := h.RuntimeConfig.Resolver()
	status := resolver.Resolve(schedule, now)
	handlerLogger.Debug().Str("kind", string(status.Kind)).Time("at", now).Msg("Resolved shop status")

	h.WriteJSON(w, http.StatusOK, StatusResponse{
		ShopID:           shopID,
		At:               now,
		SearchAfterClose: resolver.SearchAfterClose(),
		Status:           status,
		Hours:            hours.Summarize(schedule, now),
	}, handlerLogger)
}

func (h *HoursHandler) handleGetHours(w http.ResponseWriter, r *http.Request) {
	shopID := r.PathValue("id")
	handlerLogger := h.logger.With().Str("handler", "handleGetHours").Str("shop_id", shopID).Logger()

	schedule, ok := h.loadHours(w, r, shopID)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, HoursResponse{ShopID: shopID, Hours: schedule}, handlerLogger)
}

func (h *HoursHandler) handleUpdateHours(w http.ResponseWriter, r *http.Request) {
	shopID := r.PathValue("id")
	handlerLogger := h.logger.With().Str("handler", "handleUpdateHours").Str("shop_id", shopID).Logger()
	handlerLogger.Info().Msg("Handling business hours update")

	if !h.RequireAdmin(w, r, handlerLogger) {
		return
	}

	var req UpdateHoursRequest
	if !h.DecodeAndValidate(w, r, &req, handlerLogger) {
		return
	}

	schedule := req.Schedule()
	if err := hours.Validate(schedule); err != nil {
		var details []string
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				details = append(details, e.Error())
			}
		} else {
			details = []string{err.Error()}
		}
		handlerLogger.Warn().Strs("details", details).Msg("Rejected invalid business hours")
		h.WriteError(w, http.StatusUnprocessableEntity, ErrCodeInvalidHours, handlerLogger, details...)
		return
	}

	err := h.ShopStore.SaveBusinessHours(r.Context(), shopID, schedule)
	if errors.Is(err, database.ErrShopNotFound) {
		h.WriteError(w, http.StatusNotFound, ErrCodeShopNotFound, handlerLogger)
		return
	}
	if err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to save business hours")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedSaveHours, handlerLogger)
		return
	}

	handlerLogger.Info().Int("days", len(schedule)).Msg("Business hours saved")
	appSignals.EmitHoursUpdated(r.Context(), shopID)

	h.WriteJSON(w, http.StatusOK, HoursResponse{ShopID: shopID, Hours: schedule}, handlerLogger)
}

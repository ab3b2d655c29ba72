package handlers

import (
	"errors"
	"net/http"

	"github.com/belphemur/storefront/internal/database"
	"github.com/belphemur/storefront/internal/hours"
	appSignals "github.com/belphemur/storefront/internal/signals"
)

// StatusCache exposes the statuses kept fresh by the background monitor
type StatusCache interface {
	Latest(shopID string) (hours.Status, bool)
}

// ShopHandler manages the shop API
type ShopHandler struct {
	*BaseHandler
	statuses StatusCache
}

// NewShopHandler creates a new shop API handler. statuses may be nil.
func NewShopHandler(baseHandler *BaseHandler, statuses StatusCache) *ShopHandler {
	return &ShopHandler{
		BaseHandler: baseHandler,
		statuses:    statuses,
	}
}

// RegisterRoutes registers shop related routes
func (h *ShopHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/shops", h.handleListShops)
	mux.HandleFunc("POST /api/shops", h.handleCreateShop)
	mux.HandleFunc("GET /api/shops/{id}", h.handleGetShop)
	mux.HandleFunc("DELETE /api/shops/{id}", h.handleDeleteShop)
}

// ShopResponse is a shop together with its current availability
type ShopResponse struct {
	*database.Shop
	Status *hours.Status `json:"status,omitempty"`
}

// ShopListResponse is the body of GET /api/shops
type ShopListResponse struct {
	Shops []ShopResponse `json:"shops"`
}

// currentStatus prefers the monitor cache and falls back to resolving live
func (h *ShopHandler) currentStatus(r *http.Request, shopID string) (*hours.Status, error) {
	if h.statuses != nil {
		if status, ok := h.statuses.Latest(shopID); ok {
			return &status, nil
		}
	}
	schedule, err := h.ShopStore.GetBusinessHours(r.Context(), shopID)
	if err != nil {
		return nil, err
	}
	status := h.RuntimeConfig.Resolver().Resolve(schedule, h.CurrentTime())
	return &status, nil
}

func (h *ShopHandler) handleListShops(w http.ResponseWriter, r *http.Request) {
	handlerLogger := h.logger.With().Str("handler", "handleListShops").Logger()
	handlerLogger.Debug().Msg("Listing shops")

	shops, err := h.ShopStore.ListShops(r.Context())
	if err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to list shops")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedLoadShops, handlerLogger)
		return
	}

	response := ShopListResponse{Shops: make([]ShopResponse, 0, len(shops))}
	for _, shop := range shops {
		status, err := h.currentStatus(r, shop.ID)
		if err != nil {
			// A shop deleted mid-listing is reported without a status
			handlerLogger.Warn().Err(err).Str("shop_id", shop.ID).Msg("Failed to resolve shop status")
		}
		response.Shops = append(response.Shops, ShopResponse{Shop: shop, Status: status})
	}

	handlerLogger.Debug().Int("count", len(response.Shops)).Msg("Shops listed")
	h.WriteJSON(w, http.StatusOK, response, handlerLogger)
}

func (h *ShopHandler) handleGetShop(w http.ResponseWriter, r *http.Request) {
	shopID := r.PathValue("id")
	handlerLogger := h.logger.With().Str("handler", "handleGetShop").Str("shop_id", shopID).Logger()

	shop, err := h.ShopStore.GetShop(r.Context(), shopID)
	if errors.Is(err, database.ErrShopNotFound) {
		h.WriteError(w, http.StatusNotFound, ErrCodeShopNotFound, handlerLogger)
		return
	}
	if err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to load shop")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedLoadShops, handlerLogger)
		return
	}

	status, err := h.currentStatus(r, shop.ID)
	if err != nil {
		handlerLogger.Warn().Err(err).Msg("Failed to resolve shop status")
	}
	h.WriteJSON(w, http.StatusOK, ShopResponse{Shop: shop, Status: status}, handlerLogger)
}

func (h *ShopHandler) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	handlerLogger := h.logger.With().Str("handler", "handleCreateShop").Logger()
	handlerLogger.Info().Msg("Handling shop creation")

	if !h.RequireAdmin(w, r, handlerLogger) {
		return
	}

	var req CreateShopRequest
	if !h.DecodeAndValidate(w, r, &req, handlerLogger) {
		return
	}

	shop := &database.Shop{
		Name:     req.Name,
		Alias:    req.Alias,
		WhatsApp: req.WhatsApp,
	}
	if err := h.ShopStore.CreateShop(r.Context(), shop); err != nil {
		if errors.Is(err, database.ErrAliasTaken) {
			handlerLogger.Warn().Str("alias", shop.Alias).Msg("Alias already taken")
			h.WriteError(w, http.StatusConflict, ErrCodeAliasTaken, handlerLogger)
			return
		}
		if errors.Is(err, database.ErrInvalidShop) {
			handlerLogger.Warn().Err(err).Msg("Rejected invalid shop")
			h.WriteError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, handlerLogger, err.Error())
			return
		}
		handlerLogger.Error().Err(err).Msg("Failed to create shop")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedSaveShop, handlerLogger)
		return
	}

	handlerLogger.Info().Str("shop_id", shop.ID).Str("alias", shop.Alias).Msg("Shop created")
	w.Header().Set("Location", "/api/shops/"+shop.ID)
	h.WriteJSON(w, http.StatusCreated, ShopResponse{Shop: shop}, handlerLogger)
}

func (h *ShopHandler) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	shopID := r.PathValue("id")
	handlerLogger := h.logger.With().Str("handler", "handleDeleteShop").Str("shop_id", shopID).Logger()
	handlerLogger.Info().Msg("Handling shop deletion")

	if !h.RequireAdmin(w, r, handlerLogger) {
		return
	}

	err := h.ShopStore.DeleteShop(r.Context(), shopID)
	if errors.Is(err, database.ErrShopNotFound) {
		h.WriteError(w, http.StatusNotFound, ErrCodeShopNotFound, handlerLogger)
		return
	}
	if err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to delete shop")
		h.WriteError(w, http.StatusInternalServerError, ErrCodeFailedDeleteShop, handlerLogger)
		return
	}

	handlerLogger.Info().Msg("Shop deleted")
	// Listeners drop any cached status for the shop
	appSignals.EmitHoursUpdated(r.Context(), shopID)
	w.WriteHeader(http.StatusNoContent)
}

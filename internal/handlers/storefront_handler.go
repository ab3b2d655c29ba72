package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/belphemur/storefront/internal/database"
	"github.com/belphemur/storefront/internal/hours"
	"github.com/belphemur/storefront/internal/viewhelpers"
)

// StorefrontHandler renders the public shop pages
type StorefrontHandler struct {
	*BaseHandler
}

// NewStorefrontHandler creates a new storefront page handler
func NewStorefrontHandler(baseHandler *BaseHandler) *StorefrontHandler {
	return &StorefrontHandler{
		BaseHandler: baseHandler,
	}
}

// RegisterRoutes registers the public page routes
func (h *StorefrontHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /shops/{alias}", h.handleShopPage)
}

// ShopPageData contains data for the shop page template
type ShopPageData struct {
	BasePageData
	Shop         *database.Shop
	Status       hours.Status
	BadgeClass   string
	Hours        []viewhelpers.HoursRow
	WhatsAppLink string
}

// NotFoundPageData contains data for the unknown shop page
type NotFoundPageData struct {
	BasePageData
	Alias string
}

func (h *StorefrontHandler) handleShopPage(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	handlerLogger := h.logger.With().Str("handler", "handleShopPage").Str("alias", alias).Logger()
	handlerLogger.Debug().Msg("Rendering shop page")

	shop, err := h.ShopStore.GetShopByAlias(r.Context(), alias)
	if errors.Is(err, database.ErrShopNotFound) {
		handlerLogger.Debug().Msg("Unknown shop alias")
		h.RenderTemplateStatus(w, http.StatusNotFound, "not_found.html", NotFoundPageData{
			BasePageData: h.NewBasePageData(r),
			Alias:        alias,
		})
		return
	}
	if err != nil {
		handlerLogger.Error().Err(err).Msg("Failed to load shop")
		http.Error(w, GetErrorMessage(ErrCodeFailedLoadShops), http.StatusInternalServerError)
		return
	}

	schedule, err := h.ShopStore.GetBusinessHours(r.Context(), shop.ID)
	if err != nil {
		handlerLogger.Error().Err(err).Str("shop_id", shop.ID).Msg("Failed to load business hours")
		http.Error(w, GetErrorMessage(ErrCodeFailedLoadHours), http.StatusInternalServerError)
		return
	}

	now := h.CurrentTime()
	status := h.RuntimeConfig.Resolver().Resolve(schedule, now)

	h.RenderTemplate(w, "shop.html", ShopPageData{
		BasePageData: h.NewBasePageData(r),
		Shop:         shop,
		Status:       status,
		BadgeClass:   viewhelpers.BadgeClass(status),
		Hours:        viewhelpers.StructureHoursForTemplate(schedule, now),
		WhatsAppLink: viewhelpers.WhatsAppLink(shop.WhatsApp, fmt.Sprintf("Hello %s!", shop.Name)),
	})
}

package handlers

import (
	"net/http"

	"claims-service/internal/carrier"
	"claims-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// CarrierHandler exposes the capability registry so the dashboard can gate
// its filing and sync buttons without a failed round-trip.
type CarrierHandler struct {
	registry *carrier.Registry
}

func NewCarrierHandler(registry *carrier.Registry) *CarrierHandler {
	return &CarrierHandler{registry: registry}
}

func (h *CarrierHandler) Register(app *fiber.App) {
	protectedGr := app.Group("claims/protected/api/v1")

	carrierGroup := protectedGr.Group("/carriers")
	carrierGroup.Get("/", h.ListCarriers)        // GET /carriers
	carrierGroup.Get("/:slug", h.GetCapability)  // GET /carriers/:slug
}

// ListCarriers returns every registered carrier with its capability flags.
func (h *CarrierHandler) ListCarriers(c fiber.Ctx) error {
	capabilities := h.registry.List()
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"carriers": capabilities,
		"count":    len(capabilities),
	}))
}

// GetCapability returns the capability record for one carrier slug.
func (h *CarrierHandler) GetCapability(c fiber.Ctx) error {
	capability, err := h.registry.Capability(c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(capability))
}

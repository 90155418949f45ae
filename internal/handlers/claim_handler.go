package handlers

import (
	"log/slog"
	"net/http"

	"claims-service/internal/models"
	"claims-service/internal/services"
	"claims-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claimService *services.ClaimService
	filing       *services.FilingOrchestrator
	sync         *services.SyncOrchestrator
	sweeper      *services.SyncSweeper
}

func NewClaimHandler(
	claimService *services.ClaimService,
	filing *services.FilingOrchestrator,
	sync *services.SyncOrchestrator,
	sweeper *services.SyncSweeper,
) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		filing:       filing,
		sync:         sync,
		sweeper:      sweeper,
	}
}

func (h *ClaimHandler) Register(app *fiber.App) {
	protectedGr := app.Group("claims/protected/api/v1")

	claimGroup := protectedGr.Group("/claims")
	claimGroup.Post("/", h.CreateClaim)                     // POST   /claims
	claimGroup.Get("/", h.GetAllClaims)                     // GET    /claims?status=&carrier=
	claimGroup.Get("/status-counts", h.GetStatusCounts)     // GET    /claims/status-counts
	claimGroup.Get("/by-customer/:customer_id", h.GetByCustomer)
	claimGroup.Get("/:id", h.GetClaim)                      // GET    /claims/:id
	claimGroup.Patch("/:id", h.UpdateClaim)                 // PATCH  /claims/:id
	claimGroup.Post("/:id/transition", h.TransitionClaim)   // POST   /claims/:id/transition
	claimGroup.Post("/:id/file", h.FileClaim)               // POST   /claims/:id/file
	claimGroup.Post("/:id/sync", h.SyncClaim)               // POST   /claims/:id/sync
	claimGroup.Delete("/:id", h.DeleteClaim)                // DELETE /claims/:id

	syncGroup := protectedGr.Group("/sync")
	syncGroup.Post("/sweep", h.RunSweep) // POST /sync/sweep
}

// CreateClaim opens a new claim in pending status for a customer.
func (h *ClaimHandler) CreateClaim(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var req models.CreateClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	claim, err := h.claimService.CreateClaim(c.Context(), req, userID)
	if err != nil {
		slog.Error("Failed to create claim", "customer_id", req.CustomerID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(claim))
}

// GetClaim retrieves one claim with its full status history.
func (h *ClaimHandler) GetClaim(c fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	claim, err := h.claimService.GetClaim(c.Context(), claimID)
	if err != nil {
		slog.Error("Failed to get claim", "claim_id", claimID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(claim))
}

// GetByCustomer retrieves all claims belonging to one customer.
func (h *ClaimHandler) GetByCustomer(c fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customer_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid customer ID format"))
	}

	claims, err := h.claimService.GetClaimsByCustomer(c.Context(), customerID)
	if err != nil {
		slog.Error("Failed to get claims by customer", "customer_id", customerID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"claims":      claims,
		"count":       len(claims),
		"customer_id": customerID,
	}))
}

// GetAllClaims retrieves claims, optionally filtered by status and carrier.
func (h *ClaimHandler) GetAllClaims(c fiber.Ctx) error {
	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		if !services.ValidClaimStatus(models.ClaimStatus(status)) {
			return c.Status(http.StatusBadRequest).JSON(
				utils.CreateErrorResponse("INVALID_STATUS", "Unknown claim status: "+status))
		}
		filters["status"] = models.ClaimStatus(status)
	}
	if carrierSlug := c.Query("carrier"); carrierSlug != "" {
		filters["carrier"] = carrierSlug
	}

	claims, err := h.claimService.GetAllClaims(c.Context(), filters)
	if err != nil {
		slog.Error("Failed to get claims", "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	}))
}

// GetStatusCounts returns per-status claim counts for the dashboard cards.
func (h *ClaimHandler) GetStatusCounts(c fiber.Ctx) error {
	counts, err := h.claimService.StatusCounts(c.Context())
	if err != nil {
		slog.Error("Failed to get claim status counts", "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(counts))
}

// UpdateClaim patches informational and financial fields. Financial patches
// that break an invariant are rejected whole.
func (h *ClaimHandler) UpdateClaim(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	var req models.UpdateClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	claim, err := h.claimService.UpdateClaim(c.Context(), claimID, req, userID)
	if err != nil {
		slog.Error("Failed to update claim", "claim_id", claimID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(claim))
}

// TransitionClaim applies a user-requested status change.
func (h *ClaimHandler) TransitionClaim(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	var req models.TransitionRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if !services.ValidClaimStatus(req.Status) {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_STATUS", "Unknown claim status: "+string(req.Status)))
	}

	claim, err := h.claimService.TransitionClaim(c.Context(), claimID, req.Status, req.Note, userID)
	if err != nil {
		slog.Error("Failed to transition claim", "claim_id", claimID, "target", req.Status, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(claim))
}

// FileClaim submits a claim to its carrier through the filing orchestrator.
func (h *ClaimHandler) FileClaim(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	var req models.FileClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	resp, err := h.filing.File(c.Context(), claimID, req, userID)
	if err != nil {
		slog.Error("Failed to file claim", "claim_id", claimID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(resp))
}

// SyncClaim refreshes one claim from its carrier on demand.
func (h *ClaimHandler) SyncClaim(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	resp, err := h.sync.Sync(c.Context(), claimID, userID)
	if err != nil {
		slog.Error("Failed to sync claim", "claim_id", claimID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(resp))
}

// DeleteClaim hard-deletes a claim and its history.
func (h *ClaimHandler) DeleteClaim(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	if err := h.claimService.DeleteClaim(c.Context(), claimID, userID); err != nil {
		slog.Error("Failed to delete claim", "claim_id", claimID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"deleted":  true,
		"claim_id": claimID,
	}))
}

// RunSweep triggers one batch sync pass immediately instead of waiting for the
// next scheduled interval.
func (h *ClaimHandler) RunSweep(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	result, err := h.sweeper.Run(c.Context())
	if err != nil {
		slog.Error("Claim sync sweep failed", "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

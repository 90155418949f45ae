package handlers

import (
	"errors"
	"net/http"

	"claims-service/internal/models"
	"claims-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// respondError maps engine errors onto HTTP codes and the response envelope.
// Caller errors come back 4xx; carrier-side failures surface as 502 with the
// carrier's code and message preserved for correction and retry.
func respondError(c fiber.Ctx, err error) error {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", validationErr.Error()))
	}

	var transitionErr *models.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("INVALID_TRANSITION", transitionErr.Error()))
	}

	var invariantErr *models.InvariantViolationError
	if errors.As(err, &invariantErr) {
		return c.Status(http.StatusUnprocessableEntity).JSON(
			utils.CreateErrorResponse("INVARIANT_VIOLATION", invariantErr.Error()))
	}

	var unsupportedErr *models.UnsupportedOperationError
	if errors.As(err, &unsupportedErr) {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("UNSUPPORTED_OPERATION", unsupportedErr.Error()))
	}

	var carrierErr *models.CarrierError
	if errors.As(err, &carrierErr) {
		return c.Status(http.StatusBadGateway).JSON(
			utils.CreateErrorResponse("CARRIER_ERROR", carrierErr.Error()))
	}

	switch {
	case errors.Is(err, models.ErrClaimNotFound),
		errors.Is(err, models.ErrCustomerNotFound),
		errors.Is(err, models.ErrPhotoNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", err.Error()))

	case errors.Is(err, models.ErrClaimNotFiled):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("NOT_FILED", err.Error()))

	case errors.Is(err, models.ErrVersionConflict):
		return c.Status(http.StatusConflict).JSON(
			utils.CreateErrorResponse("CONCURRENCY_CONFLICT", err.Error()))

	case errors.Is(err, models.ErrCarrierUnknown):
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("UNKNOWN_CARRIER", err.Error()))
	}

	return c.Status(http.StatusInternalServerError).JSON(
		utils.CreateErrorResponse("INTERNAL_ERROR", "An unexpected error occurred"))
}

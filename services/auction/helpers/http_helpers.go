package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lead-exchange/internal/auctionerrors"
	"lead-exchange/utils"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrLeadNotFound):
		return http.StatusNotFound, "lead not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrBuyerNotFound):
		return http.StatusNotFound, "buyer not found"
	case errors.Is(err, auctionerrors.ErrRoomNotFound):
		return http.StatusNotFound, "auction room not found"
	case errors.Is(err, auctionerrors.ErrPhaseConflict):
		return http.StatusConflict, "operation not allowed in current phase"
	case errors.Is(err, auctionerrors.ErrComplianceRejected):
		return http.StatusForbidden, "transaction rejected by compliance"
	case errors.Is(err, auctionerrors.ErrPreferenceMismatch):
		return http.StatusForbidden, "lead does not match buyer constraints"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusForbidden, "bid belongs to another buyer"
	case errors.Is(err, auctionerrors.ErrBelowReserve):
		return http.StatusUnprocessableEntity, "bid below reserve price"
	case errors.Is(err, auctionerrors.ErrCommitmentMismatch):
		return http.StatusUnprocessableEntity, "reveal does not match commitment"
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request details"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

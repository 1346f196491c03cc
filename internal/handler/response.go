package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RAYMONDNJOROGE/mpesa/internal/daraja"
	"github.com/RAYMONDNJOROGE/mpesa/internal/repository"
	"github.com/RAYMONDNJOROGE/mpesa/internal/service"
)

// ErrorResponse represents an error response. The message field is what the
// submission client surfaces to the user.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Success: false, Message: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var rejected *service.STKPushRejectedError
	var apiErr *daraja.APIError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrPhoneAndAmountRequired),
		errors.Is(err, service.ErrInvalidPhoneNumber),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidTransactionID),
		errors.Is(err, service.ErrCallbackMissingCheckoutID):
		return http.StatusBadRequest

	// Safaricom declined the request
	case errors.As(err, &rejected):
		return http.StatusBadRequest

	// Daraja API trouble - upstream failure
	case errors.As(err, &apiErr):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

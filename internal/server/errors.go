package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	defaulterdomain "github.com/smallbiznis/scolara/internal/defaulter/domain"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware converts deferred handler errors into the JSON
// error envelope. Handlers abort with AbortWithError and never write error
// bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "validation error",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case errors.Is(err, feedomain.ErrInvalidFeeState):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_state",
			Code:    err.Error(),
			Message: "fee cannot accept this transition",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, billingruledomain.ErrInvalidName),
		errors.Is(err, billingruledomain.ErrInvalidAmount),
		errors.Is(err, billingruledomain.ErrInvalidBillingDay),
		errors.Is(err, billingruledomain.ErrInvalidScope),
		errors.Is(err, billingruledomain.ErrInvalidID),
		errors.Is(err, feedomain.ErrInvalidID),
		errors.Is(err, feedomain.ErrInvalidMethod),
		errors.Is(err, feedomain.ErrInvalidStatus),
		errors.Is(err, defaulterdomain.ErrInvalidSortBy),
		errors.Is(err, defaulterdomain.ErrInvalidFilter),
		errors.Is(err, defaulterdomain.ErrInvalidStudentID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, billingruledomain.ErrRuleNotFound),
		errors.Is(err, feedomain.ErrFeeNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

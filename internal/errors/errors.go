package errors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/logger"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = sanitizeError(err)
		if strings.Contains(err.Error(), "binding") || strings.Contains(err.Error(), "validation") {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "resource conflict"
	}

	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 413 error when an upload exceeds the configured size
func PayloadTooLarge(c *gin.Context, message string) {
	if message == "" {
		message = "payload too large"
	}

	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Error:   CodePayloadTooLarge,
		Message: message,
	})
}

// returns a 415 error for file types the extractor cannot read
func UnsupportedMediaType(c *gin.Context, message string) {
	if message == "" {
		message = "unsupported file type"
	}

	c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{
		Error:   CodeUnsupportedMediaType,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 402 when the caller has used today's allowance for a capability
func QuotaExceeded(c *gin.Context, capability string, limit int64) {
	message := "daily limit reached for " + capability + ", please upgrade your plan"
	if limit == 0 {
		message = capability + " is not available on your plan, upgrade to unlock it"
	}

	c.JSON(http.StatusPaymentRequired, QuotaExceededResponse{
		Error:      CodeQuotaExceeded,
		Message:    message,
		Capability: capability,
		Limit:      limit,
	})
}

// returns a 503 when a backing service (usage ledger, model provider) cannot be reached
func ServiceUnavailable(c *gin.Context, message string, err error) {
	if message == "" {
		message = "service temporarily unavailable"
	}

	logger.FromContext(c.Request.Context()).Warn(message,
		"error", err,
		"path", c.Request.URL.Path,
		"user_id", c.GetString("user_id"),
	)

	c.Header("Retry-After", "5")
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   CodeServiceUnavailable,
		Message: message,
		Details: sanitizeError(err),
	})
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	return uuidRegex.MatchString(strings.ToLower(id))
}

// validates a UUID parameter from the request path
func ValidatePathUUID(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	if !IsValidUUID(id) {
		NotFound(c, "resource")
		return "", false
	}

	return id, true
}

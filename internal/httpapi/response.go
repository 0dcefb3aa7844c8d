package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire shape for every error response. Details carries
// machine-readable context when the code alone is not enough.
type ErrorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes emitted by both services
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondReplay sends an already-serialized JSON body verbatim. Used for
// idempotent replays, where every caller must receive identical bytes.
func RespondReplay(c *gin.Context, body []byte) {
	c.Data(http.StatusOK, "application/json", body)
}

// RespondError sends an error response with the given status and code
func RespondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorBody{Error: code, Message: message})
}

// RespondErrorDetails sends an error response carrying a details payload
func RespondErrorDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, ErrorBody{Error: code, Message: message, Details: details})
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, CodeBadRequest, message)
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondError(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	RespondError(c, http.StatusForbidden, CodeForbidden, message)
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondError(c, http.StatusNotFound, CodeNotFound, message)
}

// RespondConflict sends a 409 Conflict response
func RespondConflict(c *gin.Context, message string) {
	RespondError(c, http.StatusConflict, CodeConflict, message)
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context) {
	RespondError(c, http.StatusInternalServerError, CodeInternal, "An internal server error occurred")
}

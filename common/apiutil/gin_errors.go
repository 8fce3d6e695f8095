package apiutil

import (
	"net/http"

	"github.com/Aidin1998/usersapi/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body every endpoint emits
//
// Example:
//
//	{
//	  "error": "Internal server error",
//	  "message": "runtime error: index out of range [3] with length 2"
//	}
//
// Message is only populated for 500 responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteErrorResponse writes an error body and aborts the chain
func WriteErrorResponse(c *gin.Context, status int, msg, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   msg,
		Message: detail,
	})
}

// WriteError maps err to its status code and writes the matching body
func WriteError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		WriteErrorResponse(c, http.StatusInternalServerError, "Internal server error", errors.Message(err))
		return
	}
	WriteErrorResponse(c, status, errors.Message(err), "")
}

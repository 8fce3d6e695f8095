package apiutil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestID echoes a caller-supplied request id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestHook is called with the method and path of every request before dispatch
type RequestHook func(method, path string)

// HookMiddleware invokes hook for every request
func HookMiddleware(hook RequestHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		hook(c.Request.Method, c.Request.URL.Path)
		c.Next()
	}
}

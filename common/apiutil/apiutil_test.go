package apiutil_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aidin1998/usersapi/common/apiutil"
	"github.com/Aidin1998/usersapi/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWriteError(t *testing.T) {
	r := gin.New()
	r.GET("/missing", func(c *gin.Context) {
		apiutil.WriteError(c, errors.NotFound.Explain("User not found"))
	})
	r.GET("/boom", func(c *gin.Context) {
		apiutil.WriteError(c, fmt.Errorf("disk on fire"))
	})

	w := serve(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","message":"disk on fire"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(apiutil.RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := serve(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Header().Get(apiutil.RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(apiutil.RequestIDHeader), w.Body.String())

	w = serve(r, http.MethodGet, "/", http.Header{apiutil.RequestIDHeader: {"abc"}})
	assert.Equal(t, "abc", w.Header().Get(apiutil.RequestIDHeader))
}

func TestHookMiddleware(t *testing.T) {
	var seen []string
	r := gin.New()
	r.Use(apiutil.HookMiddleware(func(method, path string) {
		seen = append(seen, method+" "+path)
	}))
	r.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/users", nil)
	serve(r, http.MethodDelete, "/nowhere", nil)
	assert.Equal(t, []string{"GET /users", "DELETE /nowhere"}, seen)
}

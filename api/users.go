package api

import (
	"net/http"
	"strconv"

	"github.com/Aidin1998/usersapi/common/apiutil"
	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/Aidin1998/usersapi/pkg/errors"
	"github.com/gin-gonic/gin"
)

var (
	errInvalidEndpoint = errors.Invalid.Explain("Invalid endpoint")
	errUserIDRequired  = errors.Invalid.Explain("User ID required")
)

// parseID reads the leading decimal integer of raw, ignoring anything after
// it, so "12abc" addresses record 12. No leading digits means no record.
func parseID(raw string) (int64, bool) {
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	start := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	id, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// lookupID resolves the :id path segment; unparseable ids address nothing
func lookupID(c *gin.Context) (int64, error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return 0, users.ErrUserNotFound
	}
	return id, nil
}

func (s *Server) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) getUser(c *gin.Context) {
	id, err := lookupID(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	user, err := s.store.Get(id)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) createUser(c *gin.Context) {
	fields, err := s.bindFields(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	user, err := fields.User()
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	created, err := s.store.Create(user)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// replaceUser reads the body before touching the store so the lookup and
// the write happen under one lock.
func (s *Server) replaceUser(c *gin.Context) {
	fields, err := s.bindFields(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	id, err := lookupID(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	user, err := fields.User()
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	updated, err := s.store.Replace(id, user)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) patchUser(c *gin.Context) {
	fields, err := s.bindFields(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	id, err := lookupID(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	merged, err := s.store.Merge(id, fields)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, merged)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := lookupID(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	if err := s.store.Delete(id); err != nil {
		apiutil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (s *Server) invalidEndpoint(c *gin.Context) {
	apiutil.WriteError(c, errInvalidEndpoint)
}

func (s *Server) userIDRequired(c *gin.Context) {
	apiutil.WriteError(c, errUserIDRequired)
}

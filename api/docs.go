package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const docsHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Users API</title>
  <meta charset="utf-8" />
</head>
<body>
  <h1>Users API</h1>
  <ul>
    <li>GET /users - list all users</li>
    <li>GET /users/:id - get a user by id</li>
    <li>POST /users - create a user (name and email required)</li>
    <li>PUT /users/:id - replace a user</li>
    <li>PATCH /users/:id - update some fields of a user</li>
    <li>DELETE /users/:id - delete a user</li>
  </ul>
</body>
</html>`

// docs serves the static API documentation page
func (s *Server) docs(c *gin.Context) {
	// defaultHeaders already set a JSON content type, which c.Data would keep
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsHTML))
}

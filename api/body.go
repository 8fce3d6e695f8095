package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/Aidin1998/usersapi/pkg/errors"
	"github.com/gin-gonic/gin"
)

var (
	errBodyTimeout  = errors.Invalid.Explain("Request timeout")
	errBodyEmpty    = errors.Invalid.Explain("Request body is empty")
	errBodyTooLarge = errors.Invalid.Explain("Request body too large")
	errNotAnObject  = errors.Invalid.Explain("Request body must be a JSON object")
)

// bodyReader reads a whole request body within a deadline
type bodyReader struct {
	timeout  time.Duration
	maxBytes int64
}

type readResult struct {
	data []byte
	err  error
}

// read drains body in one pass. When the deadline passes first, release is
// called to unblock the pending read and errBodyTimeout is returned; the
// reading goroutine exits on its own once the read fails.
func (r bodyReader) read(ctx context.Context, body io.Reader, release func()) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(body, r.maxBytes+1))
		done <- readResult{data, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, errors.Invalid.Explain("Failed to read request body: %s", res.err).Wrap(res.err)
		}
		if int64(len(res.data)) > r.maxBytes {
			return nil, errBodyTooLarge
		}
		return res.data, nil
	case <-ctx.Done():
		if release != nil {
			release()
		}
		return nil, errBodyTimeout.Wrap(ctx.Err())
	}
}

// decodeObject parses data as a single JSON object
func decodeObject(data []byte) (users.Fields, error) {
	if len(data) == 0 {
		return nil, errBodyEmpty
	}
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, errors.Invalid.Explain("Invalid JSON format: %s", err).Wrap(err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotAnObject
	}
	var fields users.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errNotAnObject.Wrap(err)
	}
	return fields, nil
}

// bindFields reads and decodes the request body of c. Every failure is a
// validation error whose message carries the reason.
func (s *Server) bindFields(c *gin.Context) (users.Fields, error) {
	rc := http.NewResponseController(c.Writer)
	body := c.Request.Body
	if body == nil {
		body = http.NoBody
	}
	release := func() {
		if err := rc.SetReadDeadline(time.Now()); err != nil {
			go body.Close()
		}
	}

	data, err := s.body.read(c.Request.Context(), body, release)
	if err == nil {
		var fields users.Fields
		fields, err = decodeObject(data)
		if err == nil {
			return fields, nil
		}
	}
	return nil, errors.Invalid.Explain("Invalid request body: %s", errors.Message(err)).Wrap(err)
}

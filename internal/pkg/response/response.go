package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// List sends a cursor-paginated list response.
func List(c *gin.Context, items interface{}, nextCursor *string) {
	c.JSON(http.StatusOK, gin.H{"items": items, "nextCursor": nextCursor})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, "not found")
}

// NotFoundMsg sends a 404 error with a custom message.
func NotFoundMsg(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, message)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abort(c, http.StatusMethodNotAllowed, "method not allowed")
}

// UnprocessableEntity sends a 422 error response.
func UnprocessableEntity(c *gin.Context, message string) {
	abort(c, http.StatusUnprocessableEntity, message)
}

// ReadFailed reports a backend read failure without leaking internals.
func ReadFailed(c *gin.Context, err error) {
	internal(c, "content read failed", err)
}

// WriteFailed reports a backend write failure without leaking internals.
func WriteFailed(c *gin.Context, err error) {
	internal(c, "content write failed", err)
}

var verbose bool

// SetVerbose controls whether 5xx envelopes carry the underlying error
// text. Production responses keep the generic message and timestamp
// only; the full error always reaches the request log either way.
func SetVerbose(v bool) { verbose = v }

func internal(c *gin.Context, summary string, err error) {
	_ = c.Error(err)
	body := gin.H{
		"ok":        0,
		"code":      http.StatusInternalServerError,
		"message":   summary,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if verbose {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"ok": 0, "code": code, "message": message})
}

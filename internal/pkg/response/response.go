package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/apperr"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

type pagedResponse struct {
	OK         bool        `json:"ok"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends {ok:true, ...fields}.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Data sends {ok:true, data: v}.
func Data(c *gin.Context, v interface{}) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": v})
}

// Paged sends a paginated response.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pagedResponse{OK: true, Data: data, Pagination: pagination})
}

// Fail aborts with {ok:false, error: message}.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	Fail(c, http.StatusUnauthorized, "Unauthorized")
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	Fail(c, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	Fail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	Fail(c, http.StatusTooManyRequests, "Too many requests")
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	Fail(c, http.StatusConflict, message)
}

// Error maps err to its status and client-safe message. Only the message of a
// classified error reaches the client.
func Error(c *gin.Context, err error) {
	e := apperr.As(err)
	if e == nil {
		Fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	_ = c.Error(err)
	Fail(c, e.Status, e.Message)
}

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/analyzer"
	"github.com/hyperifyio/doclens/internal/llm"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *Error    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error is the machine-readable part of a failed reply.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(c *gin.Context, data any, message ...string) {
	resp := &Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(requestIDKey),
	}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	c.JSON(http.StatusOK, resp)
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Success:   false,
		Error:     &Error{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(requestIDKey),
	})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// failFor maps service errors to HTTP statuses. Producer failures are
// reported without their upstream detail.
func failFor(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analyzer.ErrNoContent):
		fail(c, http.StatusBadRequest, "NO_CONTENT", "no text to analyse")
	case errors.Is(err, llm.ErrNotConfigured):
		fail(c, http.StatusServiceUnavailable, "NOT_CONFIGURED", "model access is not configured")
	case errors.Is(err, llm.ErrRateLimited):
		fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "the model is busy; try again shortly")
	case errors.Is(err, analyzer.ErrCacheMiss):
		fail(c, http.StatusNotFound, "NOT_CACHED", "no cached answer for this request")
	case errors.Is(err, analyzer.ErrEmptyResponse):
		fail(c, http.StatusBadGateway, "EMPTY_RESPONSE", "the model returned an empty answer")
	default:
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("request failed")
		fail(c, http.StatusBadGateway, "UPSTREAM_ERROR", "the analysis could not be completed")
	}
}

package dashboard

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rollout.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, rollout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rollout.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortJSON writes {"error": msg} with the status for err. Server errors
// are logged with the request id and reported generically.
func abortJSON(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("dashboard: %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": rollout.Message(err)})
}

// abortHTML renders the error page with the status for err.
func abortHTML(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("dashboard: %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), err)
	}
	c.HTML(code, "error.html", gin.H{
		"Title":   http.StatusText(code),
		"Status":  code,
		"Message": rollout.Message(err),
	})
	c.Abort()
}

// badRequest builds a validation error for malformed request input.
func badRequest(format string, args ...any) error {
	return &rollout.Error{Kind: rollout.ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

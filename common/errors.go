package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	// ErrValidation is returned when a request is missing a required field or is malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a resource or category id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an operation would break referential integrity.
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message and one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// StatusFor maps an error to its HTTP status. Conflicts are reported as 400.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes {"error": msg}. Internal faults are logged and hidden from the client.
func AbortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err,
		}).Error("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}

	var appErr *Error
	msg := err.Error()
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// InvalidBody wraps a binding error as a validation error.
func InvalidBody(err error) error {
	return &Error{Kind: ErrValidation, Message: "invalid request body: " + err.Error()}
}

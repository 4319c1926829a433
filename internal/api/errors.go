package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// httpError carries a status code out of a transaction closure so the
// whole read-check-write sequence can run atomically and still abort
// with the right response.
type httpError struct {
	status int    // HTTP status to return
	msg    string // Short message for the client
}

// Error implements the error interface
func (e *httpError) Error() string { return e.msg }

// Error constructors for the failure taxonomy
func errUnauthorized(msg string) error { return &httpError{http.StatusUnauthorized, msg} }
func errForbidden(msg string) error    { return &httpError{http.StatusForbidden, msg} }
func errNotFound(msg string) error     { return &httpError{http.StatusNotFound, msg} }
func errConflict(msg string) error     { return &httpError{http.StatusConflict, msg} }
func errInvalidInput(msg string) error { return &httpError{http.StatusUnprocessableEntity, msg} }

// respondError maps an operation failure onto the response. Anything
// that is not a tagged httpError is a storage fault: logged, and
// surfaced as a bare 500 so raw storage errors never leak.
func respondError(c *gin.Context, err error, fallback string) {
	var he *httpError
	if errors.As(err, &he) {
		c.JSON(he.status, gin.H{"error": he.msg}) // Mapped failure
		return
	}
	logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(),  // Route that failed
		"error": err.Error(),   // Underlying error
	}).Error(fallback) // Log the storage fault
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

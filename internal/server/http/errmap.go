package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
)

// errorBody is the stable machine-readable failure shape: a taxonomy kind
// plus a human-readable reason. Only "unavailable" is retryable.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// writeError maps taxonomy sentinels to HTTP status codes in one place.
func writeError(c *gin.Context, err error) {
	var (
		status int
		kind   string
	)
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		status, kind = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, errs.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	case errors.Is(err, errs.ErrInvalidInput):
		status, kind = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, errs.ErrUnavailable):
		status, kind = http.StatusServiceUnavailable, "unavailable"
	default:
		// unclassified errors carry storage internals; never echo them
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal", Reason: "internal"})
		return
	}
	c.AbortWithStatusJSON(status, errorBody{Error: kind, Reason: err.Error()})
}

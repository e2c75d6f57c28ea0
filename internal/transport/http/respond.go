package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/transport/http/envelope"
)

// FailureFromError maps a domain error onto a failure envelope. Not-found
// and conflict keep their kind as the error code, auth failures become
// unauthorized, validation problems bad_request. Anything else is reported
// as a generic internal_error; the detail stays in the logs, not the body.
func FailureFromError(env *envelope.Builder, err error) envelope.Envelope {
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		return env.FailureStatus(http.StatusNotFound, "not_found", errors.Message(err))
	case errors.KindConflict:
		return env.FailureStatus(http.StatusConflict, "conflict", errors.Message(err))
	case errors.KindAuth:
		return env.FailureStatus(http.StatusUnauthorized, "unauthorized", errors.Message(err))
	case errors.KindDomain, errors.KindConfig:
		return env.FailureStatus(http.StatusBadRequest, "bad_request", errors.Message(err))
	default:
		return env.FailureStatus(http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// WriteError renders err through FailureFromError onto the gin context.
func WriteError(c *gin.Context, env *envelope.Builder, err error) {
	envelope.Write(c, FailureFromError(env, err))
}

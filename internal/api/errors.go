package api

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobmatch/internal/identity"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrJobNotFound),
		errors.Is(err, services.ErrApplicationNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, services.ErrJobClosed),
		errors.Is(err, identity.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest), services.IsBusinessError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageOf never exposes the cause of an infrastructure failure.
func messageOf(err error) string {
	var opErr *services.OperationError
	switch {
	case errors.As(err, &opErr):
		return opErr.Message
	case statusOf(err) == http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).
			Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": messageOf(err)})
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func errInvalidQuery(name, value string) error {
	return fmt.Errorf("invalid %s: %q", name, value)
}

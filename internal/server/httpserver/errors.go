package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abanwa/twitter/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail aborts with {"error": reason}. Server errors are logged in full
// and reach the client only as a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	reason := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		reason = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": reason})
}

// bindError turns a request decoding failure into a validation error.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s is required", common.ErrorValidation, fe.Field())
		}
		return fmt.Errorf("%w: %s is invalid", common.ErrorValidation, fe.Field())
	}
	return fmt.Errorf("%w: invalid request body", common.ErrorValidation)
}

package handler

import (
	"errors"
	"net/http"

	"go-weave/internal/api/dto"
	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	var engineErr *domain.EngineError
	switch {
	case errors.As(err, &engineErr):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: engineErr.Message})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		log.GetLogger().WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

// pathID parses the :name route parameter as a UUID.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// callerID is the authenticated user's id; it answers 401 itself when there
// is none.
func callerID(c *gin.Context, identity ports.IdentityProvider) (string, bool) {
	user, ok := identity.CurrentUser(c.Request.Context())
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return "", false
	}
	return user.UserID, true
}

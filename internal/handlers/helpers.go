package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vectora/internal/errs"
	"vectora/internal/middleware"
)

// currentUserID reads the id stored by middleware.Auth.
func currentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return 0, false
	}
	return id.UserID, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseIntQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// respondError maps the errs taxonomy onto HTTP statuses.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		log.Warn(op+": unauthenticated", zap.Error(err))
		middleware.Unauthorized(c)
	case errors.Is(err, errs.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		log.Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

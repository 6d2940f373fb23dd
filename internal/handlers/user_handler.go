package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vectora/internal/models"
	"vectora/internal/services"
)

type UserHandler struct {
	service services.UserService
	log     *zap.Logger
}

func NewUserHandler(service services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

// ListUsers godoc
// @Summary      List users
// @Description  Admin only
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (1-100)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   models.User
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /api/users/ [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.service.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.log, "list users", err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

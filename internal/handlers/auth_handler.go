package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vectora/internal/errs"
	"vectora/internal/middleware"
	"vectora/internal/models"
	"vectora/internal/services"
)

type AuthHandler struct {
	users services.UserService
	log   *zap.Logger
}

func NewAuthHandler(users services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// Register godoc
// @Summary      Register
// @Description  Creates an account with a username and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterRequest  true  "Account data"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, "register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates a user and returns an access/refresh token pair
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  services.AuthResult
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.users.Login(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, services.ErrBadLogin):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
	case errors.Is(err, errs.ErrInactiveAccount):
		c.JSON(http.StatusForbidden, gin.H{"error": "user is inactive"})
	default:
		respondError(c, h.log, "login", err)
	}
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token (sent as Bearer) for a new token pair
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.AuthResult
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok || token == "" {
		h.log.Warn("refresh: missing bearer")
		middleware.Unauthorized(c)
		return
	}
	res, err := h.users.Refresh(c.Request.Context(), token)
	if err != nil {
		h.log.Warn("refresh rejected", zap.Error(err))
		middleware.Unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Telegram godoc
// @Summary      Telegram login
// @Description  Verifies Mini-App init data and returns a token pair, creating the account when allowed
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.TelegramLoginRequest  true  "Raw init data"
// @Success      200   {object}  services.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/telegram [post]
func (h *AuthHandler) Telegram(c *gin.Context) {
	var req models.TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.users.TelegramLogin(c.Request.Context(), req.InitData)
	if err != nil {
		h.log.Warn("telegram login rejected", zap.Error(err))
		middleware.Unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me godoc
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	user, err := h.users.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary      Update current user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.UserUpdate  true  "Fields to change"
// @Success      200   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.UpdateMe(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, h.log, "update me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

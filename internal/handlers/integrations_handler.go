package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HeaderWebhookSecret is the header Telegram echoes back from setWebhook's secret_token.
const HeaderWebhookSecret = "X-Telegram-Bot-Api-Secret-Token"

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

type IntegrationsHandler struct {
	bot    UpdateHandler
	secret string
	log    *zap.Logger
}

func NewIntegrationsHandler(bot UpdateHandler, secret string, log *zap.Logger) *IntegrationsHandler {
	return &IntegrationsHandler{bot: bot, secret: secret, log: log}
}

// Webhook godoc
// @Summary      Telegram webhook
// @Description  Receives bot updates pushed by Telegram
// @Tags         Integrations
// @Accept       json
// @Param        X-Telegram-Bot-Api-Secret-Token  header  string  false  "Webhook secret"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Router       /integrations/telegram/webhook [post]
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	// An unset secret matches nothing.
	got := c.GetHeader(HeaderWebhookSecret)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		h.log.Warn("webhook: bad secret token", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if h.bot == nil {
		c.Status(http.StatusOK)
		return
	}

	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		// Telegram retries non-2xx answers; a malformed update is dropped.
		h.log.Warn("webhook: bind update", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}
	h.bot.HandleUpdate(c.Request.Context(), upd)
	c.Status(http.StatusOK)
}

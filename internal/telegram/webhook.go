package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Requester is the raw method call surface of *tgbotapi.BotAPI.
type Requester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// SetWebhook points Telegram at url. secret is echoed back in the
// X-Telegram-Bot-Api-Secret-Token header of every delivery.
// The pinned client has no secret_token field, so the call is made by hand.
func SetWebhook(api Requester, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	if secret != "" {
		params["secret_token"] = secret
	}
	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("set webhook: %s", resp.Description)
	}
	return nil
}

// DeleteWebhook switches the bot back to getUpdates delivery.
func DeleteWebhook(api Requester) error {
	resp, err := api.MakeRequest("deleteWebhook", tgbotapi.Params{})
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("delete webhook: %s", resp.Description)
	}
	return nil
}

package telegram

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vectora/internal/models"
)

const (
	btnOpenApp    = "🚀 Open Vectora"
	digestMaxRows = 30
	callbackHelp  = "help"
)

// Sender is the subset of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type BotUsers interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

type BotTasks interface {
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
}

// Bot answers commands and delivers reminders.
type Bot struct {
	api       Sender
	users     BotUsers
	tasks     BotTasks
	webAppURL string
	now       func() time.Time
	log       *zap.Logger
}

func NewBot(api Sender, users BotUsers, tasks BotTasks, webAppURL string, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{api: api, users: users, tasks: tasks, webAppURL: webAppURL, now: time.Now, log: log}
}

// The pinned Bot API client predates Web Apps, so the markup is built by hand.
type webAppInfo struct {
	URL string `json:"url"`
}

type webAppButton struct {
	Text   string      `json:"text"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
	URL    string      `json:"url,omitempty"`
}

type inlineWebAppMarkup struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

type replyWebAppMarkup struct {
	Keyboard              [][]webAppButton `json:"keyboard"`
	ResizeKeyboard        bool             `json:"resize_keyboard"`
	InputFieldPlaceholder string           `json:"input_field_placeholder,omitempty"`
}

// SendReminder notifies the task owner with a button that opens the task in the Mini App.
func (b *Bot) SendReminder(_ context.Context, r models.Reminder) error {
	msg := tgbotapi.NewMessage(r.ChatID, fmt.Sprintf("⏰ Reminder: <b>%s</b>\nDue %s UTC",
		html.EscapeString(r.Title), r.DateTime.UTC().Format("2006-01-02 15:04")))
	msg.ParseMode = tgbotapi.ModeHTML
	if b.webAppURL != "" {
		msg.ReplyMarkup = inlineWebAppMarkup{InlineKeyboard: [][]webAppButton{{
			{Text: "Open task", WebApp: &webAppInfo{URL: b.taskURL(r.TaskID)}},
		}}}
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder for task %d: %w", r.TaskID, err)
	}
	b.log.Info("reminder sent", zap.Int64("task_id", r.TaskID), zap.Int64("chat_id", r.ChatID))
	return nil
}

func (b *Bot) taskURL(taskID int64) string {
	u, err := url.Parse(b.webAppURL)
	if err != nil {
		return b.webAppURL
	}
	q := u.Query()
	q.Set("task", strconv.FormatInt(taskID, 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// HandleUpdate dispatches one update from polling or the webhook.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if cq := upd.CallbackQuery; cq != nil {
		b.handleCallback(cq)
		return
	}
	m := upd.Message
	if m == nil || m.Chat == nil {
		return
	}
	chatID := m.Chat.ID

	var err error
	switch {
	case m.IsCommand() && m.Command() == "start":
		err = b.sendStart(chatID, m.From)
	case m.IsCommand() && m.Command() == "help":
		err = b.sendHelp(chatID)
	case m.IsCommand() && m.Command() == "tasks":
		err = b.sendDigest(ctx, m.Chat, m.From)
	default:
		err = b.sendText(chatID, "Use /start to begin or /help for help.")
	}
	if err != nil {
		b.log.Warn("bot reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Warn("callback answer failed", zap.Error(err))
	}
	if cq.Data == callbackHelp && cq.Message != nil && cq.Message.Chat != nil {
		if err := b.sendHelp(cq.Message.Chat.ID); err != nil {
			b.log.Warn("bot reply failed", zap.Error(err))
		}
	}
}

func (b *Bot) sendStart(chatID int64, from *tgbotapi.User) error {
	name := "there"
	if from != nil && from.FirstName != "" {
		name = from.FirstName
	}
	text := fmt.Sprintf("👋 <b>Welcome to Vectora!</b>\n\nHi, %s! Vectora is a task planner right inside Telegram.\n\n"+
		"• 📝 Create and manage tasks\n• 📅 Deadlines and reminders\n• 🏷️ Categories and tags\n• 🔥 Priorities\n\n"+
		"Tap <b>%s</b> below.", html.EscapeString(name), html.EscapeString(btnOpenApp))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if b.webAppURL != "" {
		msg.ReplyMarkup = replyWebAppMarkup{
			Keyboard:              [][]webAppButton{{{Text: btnOpenApp, WebApp: &webAppInfo{URL: b.webAppURL}}}},
			ResizeKeyboard:        true,
			InputFieldPlaceholder: "Tap the button below",
		}
	}
	if _, err := b.api.Send(msg); err != nil {
		return err
	}

	alt := tgbotapi.NewMessage(chatID, "Or use the buttons:")
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", callbackHelp)),
	}
	if b.webAppURL != "" {
		rows = append([][]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("📱 Open in browser", b.webAppURL)),
		}, rows...)
	}
	alt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := b.api.Send(alt)
	return err
}

func (b *Bot) sendHelp(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "<b>📖 Vectora help</b>\n\n"+
		"<b>Commands:</b>\n/start - open the app\n/tasks - your active tasks by deadline\n/help - this help\n\n"+
		"<b>How to use:</b>\n1. Tap \""+html.EscapeString(btnOpenApp)+"\"\n2. Create tasks with ➕\n"+
		"3. Organise them by category\n4. Tick off what is done ✅")
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// daysLeft buckets a deadline relative to now; the int orders buckets.
func daysLeft(now time.Time, due *time.Time) (bucket string, sortKey int) {
	if due == nil {
		return "No deadline", 1_000_000
	}
	days := int(due.Sub(now).Hours() / 24)
	if due.Before(now) && days == 0 {
		days = -1
	}
	switch {
	case days < 0:
		bucket = fmt.Sprintf("Overdue (%d d)", -days)
	case days == 0:
		bucket = "Today"
	case days == 1:
		bucket = "In 1 day"
	default:
		bucket = fmt.Sprintf("In %d days", days)
	}
	return bucket, days
}

// sendDigest lists pending tasks. It only answers in the sender's private chat
// so a group never sees someone's task titles.
func (b *Bot) sendDigest(ctx context.Context, chat *tgbotapi.Chat, from *tgbotapi.User) error {
	chatID := chat.ID
	if from != nil && !chat.IsPrivate() && chat.ID != from.ID {
		return b.sendText(chatID, "Open a private chat with the bot to see your tasks.")
	}
	if from == nil || b.users == nil || b.tasks == nil {
		return b.sendText(chatID, "Could not identify you. Open the app once with /start first.")
	}
	u, err := b.users.GetByTelegramID(ctx, from.ID)
	if err != nil {
		return b.sendText(chatID, "Could not identify you. Open the app once with /start first.")
	}

	pending := false
	tasks, err := b.tasks.GetAll(ctx, models.TaskFilter{UserID: u.ID, Status: &pending})
	if err != nil {
		b.log.Error("digest task fetch failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return b.sendText(chatID, "Could not load tasks.")
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "You have no active tasks. 👍")
	}

	msg := tgbotapi.NewMessage(chatID, FormatDigest(b.now(), tasks))
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

// FormatDigest groups active tasks by days left, soonest first.
func FormatDigest(now time.Time, tasks []models.Task) string {
	type group struct {
		name  string
		key   int
		items []models.Task
	}
	byName := map[string]*group{}
	for _, t := range tasks {
		name, key := daysLeft(now, t.DateTime)
		g := byName[name]
		if g == nil {
			g = &group{name: name, key: key}
			byName[name] = g
		}
		g.items = append(g.items, t)
	}
	groups := make([]*group, 0, len(byName))
	for _, g := range byName {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key < groups[j].key })

	var sb strings.Builder
	sb.WriteString("📋 <b>My tasks by deadline</b>\n")
	rows := 0
	for _, g := range groups {
		sort.Slice(g.items, func(i, j int) bool {
			di, dj := g.items[i].DateTime, g.items[j].DateTime
			switch {
			case di == nil && dj == nil:
				return g.items[i].ID < g.items[j].ID
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return di.Before(*dj)
			}
		})
		sb.WriteString("\n— <b>" + html.EscapeString(g.name) + "</b>\n")
		for _, t := range g.items {
			if rows == digestMaxRows {
				sb.WriteString(fmt.Sprintf("\n…and %d more\n", len(tasks)-rows))
				return sb.String()
			}
			due := "—"
			if t.DateTime != nil {
				due = t.DateTime.UTC().Format("2006-01-02")
			}
			sb.WriteString("• " + html.EscapeString(t.Title) + " [" + string(t.Priority) + ", due: " + due + "]\n")
			rows++
		}
	}
	return sb.String()
}

// Commands registers the command list shown in the Telegram client.
func (b *Bot) Commands() error {
	_, err := b.api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Open Vectora"},
		tgbotapi.BotCommand{Command: "tasks", Description: "Active tasks by deadline"},
		tgbotapi.BotCommand{Command: "help", Description: "Help"},
	))
	return err
}

// Poll long-polls for updates until ctx is cancelled.
func (b *Bot) Poll(ctx context.Context, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

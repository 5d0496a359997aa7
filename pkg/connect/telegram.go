package connect

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const telegramLimit = 4096

// Telegram answers direct and group messages sent to a bot.
type Telegram struct {
	token  string
	allow  Allow
	logger *log.Logger
}

func NewTelegram(token string, allow []string, logger *log.Logger) *Telegram {
	return &Telegram{token: token, allow: allow, logger: logger.With("channel", "telegram")}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Run(ctx context.Context, handle Handler) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return errors.Wrap(err, "connect to telegram")
	}
	t.logger.Info("bot connected", "user", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			m := update.Message
			if m == nil || m.From == nil || m.Text == "" {
				continue
			}
			from := "@" + m.From.UserName
			if m.From.UserName == "" {
				from = strconv.FormatInt(m.From.ID, 10)
			}

			text := NotAuthorized
			if t.allow.Permits(m.From.UserName, strconv.FormatInt(m.From.ID, 10)) {
				text = handle(ctx, Message{
					Platform: t.Name(),
					ChatID:   strconv.FormatInt(m.Chat.ID, 10),
					From:     from,
					Text:     m.Text,
				}).Text
			} else {
				t.logger.Warn("rejected message", "from", from)
			}
			for _, part := range chunk(text, telegramLimit) {
				reply := tgbotapi.NewMessage(m.Chat.ID, part)
				reply.ReplyToMessageID = m.MessageID
				if _, err := bot.Send(reply); err != nil {
					t.logger.Warn("send failed", "chat", m.Chat.ID, "err", err)
					break
				}
			}
		}
	}
}

package connect

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const discordLimit = 2000

// Discord answers messages in channels the bot can read.
type Discord struct {
	token  string
	allow  Allow
	logger *log.Logger
}

func NewDiscord(token string, allow []string, logger *log.Logger) *Discord {
	return &Discord{token: token, allow: allow, logger: logger.With("channel", "discord")}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Run(ctx context.Context, handle Handler) error {
	dg, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return errors.Wrap(err, "create discord session")
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.ID == s.State.User.ID || m.Content == "" {
			return
		}
		from := m.Author.Username
		if m.Author.Discriminator != "" && m.Author.Discriminator != "0" {
			from += "#" + m.Author.Discriminator
		}

		text := NotAuthorized
		if d.allow.Permits(m.Author.Username, m.Author.ID) {
			text = handle(ctx, Message{
				Platform: d.Name(),
				ChatID:   m.ChannelID,
				From:     from,
				Text:     m.Content,
			}).Text
		} else {
			d.logger.Warn("rejected message", "from", from)
		}
		for _, part := range chunk(text, discordLimit) {
			if _, err := s.ChannelMessageSend(m.ChannelID, part); err != nil {
				d.logger.Warn("send failed", "channel", m.ChannelID, "err", err)
				return
			}
		}
	})

	if err := dg.Open(); err != nil {
		return errors.Wrap(err, "open discord connection")
	}
	d.logger.Info("bot connected")

	<-ctx.Done()
	return dg.Close()
}

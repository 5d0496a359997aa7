package connect

import (
	"github.com/charmbracelet/log"

	"github.com/talon-assistant/talent-catalog/pkg/config"
)

// Secrets looks up a stored secret, returning "" when it is absent.
type Secrets interface {
	Lookup(key string) string
}

// Vault keys consulted when a channel token is not set in the settings file.
const (
	TelegramTokenKey = "channels.telegram.token"
	DiscordTokenKey  = "channels.discord.token"
)

// FromSettings builds the channels that are configured. A token may come from
// the settings file, TALON_* env or the vault.
func FromSettings(s *config.Settings, secrets Secrets, logger *log.Logger) []Channel {
	if logger == nil {
		logger = log.Default()
	}
	var out []Channel
	if token := secret(s.Channels.Telegram.Token, TelegramTokenKey, secrets); token != "" {
		out = append(out, NewTelegram(token, s.Channels.Telegram.Allow, logger))
	}
	if token := secret(s.Channels.Discord.Token, DiscordTokenKey, secrets); token != "" {
		out = append(out, NewDiscord(token, s.Channels.Discord.Allow, logger))
	}
	if addr := s.Channels.Websocket.Addr; addr != "" {
		out = append(out, NewWebSocket(addr, logger))
	}
	return out
}

func secret(value, key string, secrets Secrets) string {
	if value != "" || secrets == nil {
		return value
	}
	return secrets.Lookup(key)
}

package service

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAPI is the slice of the bot API the services need: chat
// lookup, membership lookup and message delivery. *tgbotapi.BotAPI
// satisfies it; tests substitute fakes.
type TelegramAPI interface {
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	CopyMessage(config tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error)
}

func chatByID(id int64) tgbotapi.ChatInfoConfig {
	return tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: id}}
}

func chatByUsername(username string) tgbotapi.ChatInfoConfig {
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	return tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: username}}
}

package service_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"promo-bot/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// fakeAPI implements service.TelegramAPI against in-memory fixtures.
// Chats are keyed by numeric id ("-100...") or username ("@name");
// member statuses by "<chatID>:<userID>".
type fakeAPI struct {
	chats      map[string]tgbotapi.Chat
	members    map[string]string
	memberErr  map[string]error
	deliverErr map[int64]error

	sent   []tgbotapi.MessageConfig
	copied []tgbotapi.CopyMessageConfig
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		chats:      make(map[string]tgbotapi.Chat),
		members:    make(map[string]string),
		memberErr:  make(map[string]error),
		deliverErr: make(map[int64]error),
	}
}

func (f *fakeAPI) GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	key := config.SuperGroupUsername
	if key == "" {
		key = strconv.FormatInt(config.ChatID, 10)
	}
	chat, ok := f.chats[key]
	if !ok {
		return tgbotapi.Chat{}, fmt.Errorf("chat %s not found", key)
	}
	return chat, nil
}

func (f *fakeAPI) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	key := fmt.Sprintf("%d:%d", config.ChatID, config.UserID)
	if err, ok := f.memberErr[key]; ok {
		return tgbotapi.ChatMember{}, err
	}
	status, ok := f.members[key]
	if !ok {
		return tgbotapi.ChatMember{}, fmt.Errorf("member %s not found", key)
	}
	return tgbotapi.ChatMember{Status: status}, nil
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	if err, ok := f.deliverErr[msg.ChatID]; ok {
		return tgbotapi.Message{}, err
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) CopyMessage(config tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error) {
	if err, ok := f.deliverErr[config.ChatID]; ok {
		return tgbotapi.MessageID{}, err
	}
	f.copied = append(f.copied, config)
	return tgbotapi.MessageID{}, nil
}

func (f *fakeAPI) setMember(chatID, userID int64, status string) {
	f.members[fmt.Sprintf("%d:%d", chatID, userID)] = status
}

func (f *fakeAPI) setMemberErr(chatID, userID int64, err error) {
	f.memberErr[fmt.Sprintf("%d:%d", chatID, userID)] = err
}

func (f *fakeAPI) textsSentTo(chatID int64) []string {
	var texts []string
	for _, msg := range f.sent {
		if msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

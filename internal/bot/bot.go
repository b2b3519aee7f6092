package bot

import (
	"context"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/config"
	"promo-bot/internal/repository"
	"promo-bot/internal/service"
)

const (
	cbVerifyJoin   = "verify_join"
	cbStartEarning = "start_earning"
	cbBackHome     = "back_home"
	cbOwnerPanel   = "owner_panel"
)

// telegramAPI is the slice of the bot API the handlers use.
// *tgbotapi.BotAPI satisfies it; tests substitute a fake.
type telegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

// Bot aggregates the Telegram API with the store and services and
// routes incoming updates.
type Bot struct {
	api      telegramAPI
	config   *config.Config
	owners   *repository.OwnerRepository
	users    *repository.UserRepository
	settings *repository.SettingRepository
	channels *service.ChannelService
	verify   *service.VerifyService
	bcast    *service.BroadcastService
}

func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	owners *repository.OwnerRepository,
	users *repository.UserRepository,
	settings *repository.SettingRepository,
	channels *service.ChannelService,
	verify *service.VerifyService,
	bcast *service.BroadcastService,
) *Bot {
	return &Bot{
		api:      api,
		config:   cfg,
		owners:   owners,
		users:    users,
		settings: settings,
		channels: channels,
		verify:   verify,
		bcast:    bcast,
	}
}

// Start begins polling updates until ctx is cancelled. Handler errors
// are logged per update and never stop the loop.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.MyChatMember != nil:
			if err := b.handleMyChatMember(ctx, update.MyChatMember); err != nil {
				log.Printf("handle chat member update: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	// Any non-command message from an owner in the direct chat is a
	// broadcast payload. Everyone else is silently ignored.
	if b.isOwner(ctx, msg.From) {
		return b.handleBroadcast(ctx, msg)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "addowner":
		return b.handleAddOwner(ctx, msg)
	case "removeowner":
		return b.handleRemoveOwner(ctx, msg)
	case "listowners":
		return b.handleListOwners(ctx, msg)
	case "setclaim":
		return b.handleSetClaim(ctx, msg)
	case "addchannel":
		return b.handleAddChannel(ctx, msg)
	case "removechannel":
		return b.handleRemoveChannel(ctx, msg)
	case "listchannels":
		return b.handleListChannels(ctx, msg)
	case "schedule":
		return b.handleSchedule(ctx, msg)
	case "listschedule":
		return b.handleListSchedule(ctx, msg)
	case "deleteschedule":
		return b.handleDeleteSchedule(ctx, msg)
	default:
		return nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}

	switch cb.Data {
	case cbVerifyJoin:
		return b.handleVerifyJoin(ctx, cb)
	case cbStartEarning, cbBackHome:
		b.ack(cb, "")
		return b.editHome(ctx, cb)
	case cbOwnerPanel:
		b.ack(cb, "")
		return b.handleOwnerPanel(ctx, cb)
	default:
		b.ack(cb, "")
		return nil
	}
}

func (b *Bot) isOwner(ctx context.Context, from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	return b.owners.IsOwner(ctx, from.UserName)
}

// isPrimaryOwner reports whether target names the configured primary
// owner, who is protected from removal.
func (b *Bot) isPrimaryOwner(target string) bool {
	return b.config.OwnerUsername != "" && config.NormalizeUsername(target) == b.config.OwnerUsername
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func escape(s string) string {
	return html.EscapeString(s)
}

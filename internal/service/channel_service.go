package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/model"
	"promo-bot/internal/repository"
)

var (
	// ErrUnresolved means the reference could not be resolved to a chat
	// and no private-link fallback was possible.
	ErrUnresolved = errors.New("channel could not be resolved")
	// ErrNotChannel means the reference resolved to a chat that is not
	// a channel.
	ErrNotChannel = errors.New("chat is not a channel")
	// ErrBadReference means the supplied arguments could not be parsed
	// into a channel reference at all.
	ErrBadReference = errors.New("invalid channel reference")
)

// AdminStatus describes the bot's rights in a freshly registered channel.
type AdminStatus int

const (
	AdminOK AdminStatus = iota
	AdminMissing
	AdminUnknown
)

// ChannelRef is a parsed user-supplied channel reference.
type ChannelRef struct {
	ID         string // numeric chat id, as given
	Username   string // public username, without "@"
	InviteLink string
}

// IsPrivateLink reports whether the stored link is a private invite
// (t.me/+... or legacy joinchat) that cannot be resolved to a chat.
func (r ChannelRef) IsPrivateLink() bool {
	return isPrivateLink(r.InviteLink)
}

// RegisterResult reports the outcome of a channel registration.
type RegisterResult struct {
	Channel     *model.Channel
	Placeholder bool
	Admin       AdminStatus
}

// ChannelService resolves channel references against the Telegram
// directory and keeps the channel registry in the store.
type ChannelService struct {
	channels *repository.ChannelRepository
	api      TelegramAPI
	selfID   int64
}

func NewChannelService(channels *repository.ChannelRepository, api TelegramAPI, selfID int64) *ChannelService {
	return &ChannelService{channels: channels, api: api, selfID: selfID}
}

// ParseChannelRef classifies /addchannel arguments: "<id> <link>",
// a single link (public or private), an @username, or a bare id.
func ParseChannelRef(args []string) (ChannelRef, error) {
	switch len(args) {
	case 2:
		return ChannelRef{ID: args[0], InviteLink: args[1]}, nil
	case 1:
		arg := args[0]
		if isLink(arg) {
			ref := ChannelRef{InviteLink: arg}
			if isPrivateLink(arg) {
				return ref, nil
			}
			username := usernameFromLink(arg)
			if username == "" {
				return ChannelRef{}, fmt.Errorf("%w: cannot extract username from %q", ErrBadReference, arg)
			}
			ref.Username = username
			return ref, nil
		}
		if strings.HasPrefix(arg, "@") {
			username := strings.TrimPrefix(arg, "@")
			return ChannelRef{Username: username, InviteLink: "https://t.me/" + username}, nil
		}
		return ChannelRef{ID: arg}, nil
	default:
		return ChannelRef{}, ErrBadReference
	}
}

// Register resolves a reference and stores the channel. A private
// invite link that fails directory resolution degrades to a
// placeholder record; membership checks are skipped for those.
func (s *ChannelService) Register(ctx context.Context, ref ChannelRef) (*RegisterResult, error) {
	chat, resolved := s.resolve(ref)

	if !resolved {
		if ref.IsPrivateLink() {
			return s.registerPlaceholder(ctx, ref.InviteLink)
		}
		if ref.ID == "" && ref.Username == "" {
			return nil, fmt.Errorf("%w: no id or username to resolve", ErrUnresolved)
		}
		return nil, ErrUnresolved
	}

	if !chat.IsChannel() {
		return nil, ErrNotChannel
	}

	admin := s.checkAdmin(chat.ID)

	username := chat.UserName
	if username == "" {
		username = ref.Username
	}

	link := ref.InviteLink
	if link == "" {
		link = chat.InviteLink
	}
	if link == "" && username != "" {
		link = "https://t.me/" + username
	}
	if link == "" {
		link = "https://t.me/"
	}

	channel := &model.Channel{
		ChannelID:  strconv.FormatInt(chat.ID, 10),
		Title:      chat.Title,
		Username:   username,
		InviteLink: link,
	}
	if err := s.channels.Add(ctx, channel); err != nil {
		return nil, err
	}

	log.Printf("[info] channel registered id=%s title=%q admin=%d", channel.ChannelID, channel.Title, admin)
	return &RegisterResult{Channel: channel, Admin: admin}, nil
}

func (s *ChannelService) resolve(ref ChannelRef) (tgbotapi.Chat, bool) {
	switch {
	case ref.ID != "":
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil {
			return tgbotapi.Chat{}, false
		}
		chat, err := s.api.GetChat(chatByID(id))
		if err != nil {
			log.Printf("resolve channel id %s: %v", ref.ID, err)
			return tgbotapi.Chat{}, false
		}
		return chat, true
	case ref.Username != "":
		chat, err := s.api.GetChat(chatByUsername(ref.Username))
		if err != nil {
			log.Printf("resolve channel @%s: %v", ref.Username, err)
			return tgbotapi.Chat{}, false
		}
		return chat, true
	default:
		return tgbotapi.Chat{}, false
	}
}

func (s *ChannelService) registerPlaceholder(ctx context.Context, inviteLink string) (*RegisterResult, error) {
	now := time.Now().Unix()
	channel := &model.Channel{
		ChannelID:  fmt.Sprintf("%s%d", model.PlaceholderPrefix, now),
		Title:      fmt.Sprintf("Channel %d", now),
		InviteLink: inviteLink,
	}
	if err := s.channels.Add(ctx, channel); err != nil {
		return nil, err
	}
	log.Printf("[info] placeholder channel stored id=%s link=%s", channel.ChannelID, inviteLink)
	return &RegisterResult{Channel: channel, Placeholder: true, Admin: AdminUnknown}, nil
}

func (s *ChannelService) checkAdmin(chatID int64) AdminStatus {
	member, err := s.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: s.selfID},
	})
	if err != nil {
		log.Printf("check admin rights in %d: %v", chatID, err)
		return AdminUnknown
	}
	if member.IsAdministrator() || member.IsCreator() {
		return AdminOK
	}
	return AdminMissing
}

// List returns all registered channels in registration order.
func (s *ChannelService) List(ctx context.Context) ([]model.Channel, error) {
	return s.channels.List(ctx)
}

// Remove deletes a channel by id or @username. Usernames are resolved
// through the directory first since the store is keyed by chat id.
func (s *ChannelService) Remove(ctx context.Context, target string) (bool, error) {
	channelID := target
	if strings.HasPrefix(target, "@") {
		chat, err := s.api.GetChat(chatByUsername(target))
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnresolved, err)
		}
		channelID = strconv.FormatInt(chat.ID, 10)
	}
	return s.channels.Delete(ctx, channelID)
}

// Reconcile matches a channel the bot was just promoted in against
// stored placeholders by exact title and rewrites the first match with
// the real chat id. Returns the reconciled record, or nil when no
// placeholder matched.
func (s *ChannelService) Reconcile(ctx context.Context, chat tgbotapi.Chat) (*model.Channel, error) {
	placeholders, err := s.channels.ListPlaceholders(ctx)
	if err != nil {
		return nil, err
	}
	for _, ph := range placeholders {
		if ph.Title != chat.Title {
			continue
		}
		newID := strconv.FormatInt(chat.ID, 10)
		if err := s.channels.UpdateChannelID(ctx, ph.ChannelID, newID, chat.Title); err != nil {
			return nil, err
		}
		ph.ChannelID = newID
		ph.Title = chat.Title
		log.Printf("[info] placeholder reconciled title=%q id=%s", chat.Title, newID)
		return &ph, nil
	}
	return nil, nil
}

func isLink(s string) bool {
	return strings.HasPrefix(s, "http") || strings.HasPrefix(s, "t.me")
}

func isPrivateLink(s string) bool {
	return strings.Contains(s, "t.me/+") || strings.Contains(s, "joinchat")
}

func usernameFromLink(link string) string {
	_, rest, found := strings.Cut(link, "t.me/")
	if !found {
		return ""
	}
	rest, _, _ = strings.Cut(rest, "/")
	rest, _, _ = strings.Cut(rest, "?")
	return rest
}

package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/repository"
)

// Reward amounts, in points.
const (
	PointsPerJoin     = 100
	PointsPerReferral = 50
)

// Membership statuses counted as "not joined".
func notJoined(status string) bool {
	return status == "left" || status == "kicked" || status == "restricted"
}

// VerifyResult is the outcome of a join-verification pass.
type VerifyResult struct {
	AllJoined       bool
	AlreadyVerified bool     // latch was already set, nothing re-checked
	Missing         []string // titles of channels not joined, registration order
	Awarded         bool     // the join bonus was applied by this call
}

// VerifyService checks a user's membership across all registered
// channels and applies the one-time join reward.
type VerifyService struct {
	users    *repository.UserRepository
	channels *repository.ChannelRepository
	api      TelegramAPI
}

func NewVerifyService(users *repository.UserRepository, channels *repository.ChannelRepository, api TelegramAPI) *VerifyService {
	return &VerifyService{users: users, channels: channels, api: api}
}

// Verify runs the membership check for a user. When the user has
// already claimed the reward it short-circuits without touching the
// API. On a full pass the join bonus and referrer bonus are applied at
// most once for the life of the user record: the joined-all latch is a
// conditional update, so concurrent calls race safely.
func (s *VerifyService) Verify(ctx context.Context, telegramID int64) (*VerifyResult, error) {
	user, err := s.users.GetOrCreate(ctx, telegramID, "", nil)
	if err != nil {
		return nil, err
	}

	if user.JoinedAll {
		return &VerifyResult{AllJoined: true, AlreadyVerified: true}, nil
	}

	channels, err := s.channels.List(ctx)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, ch := range channels {
		// Link-only channels cannot be verified; auto-pass.
		if ch.IsPlaceholder() {
			continue
		}
		joined, err := s.isMember(ch.ChannelID, telegramID)
		if err != nil {
			// Fail closed: an unverifiable channel counts as missing.
			log.Printf("membership check for %q: %v", ch.Title, err)
			missing = append(missing, ch.Title)
			continue
		}
		if !joined {
			missing = append(missing, ch.Title)
		}
	}

	if len(missing) > 0 {
		return &VerifyResult{Missing: missing}, nil
	}

	awarded, err := s.users.AwardJoinBonus(ctx, telegramID, PointsPerJoin)
	if err != nil {
		return nil, err
	}
	if !awarded {
		// A concurrent call claimed the reward first.
		return &VerifyResult{AllJoined: true, AlreadyVerified: true}, nil
	}

	if user.ReferrerID != nil {
		s.rewardReferrer(ctx, *user.ReferrerID)
	}

	return &VerifyResult{AllJoined: true, Awarded: true}, nil
}

func (s *VerifyService) isMember(channelID string, telegramID int64) (bool, error) {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("bad channel id %q: %w", channelID, err)
	}
	member, err := s.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: telegramID},
	})
	if err != nil {
		return false, err
	}
	return !notJoined(member.Status), nil
}

// rewardReferrer credits the referrer and notifies them. The
// notification is fire-and-forget: a blocked bot must not roll back
// the award.
func (s *VerifyService) rewardReferrer(ctx context.Context, referrerID int64) {
	if err := s.users.AddPoints(ctx, referrerID, PointsPerReferral); err != nil {
		log.Printf("reward referrer %d: %v", referrerID, err)
		return
	}
	msg := tgbotapi.NewMessage(referrerID, fmt.Sprintf(
		"🎉 Referral bonus! A user you invited just verified their account. +%d points!",
		PointsPerReferral,
	))
	if _, err := s.api.Send(msg); err != nil {
		log.Printf("notify referrer %d: %v", referrerID, err)
	}
}

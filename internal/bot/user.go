package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/model"
	"promo-bot/internal/service"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From

	referrerID := parseReferrer(msg.CommandArguments(), from.ID)
	if _, err := b.users.GetOrCreate(ctx, from.ID, from.UserName, referrerID); err != nil {
		return err
	}

	// Auto-bootstrap the configured primary owner on first contact.
	if b.isPrimaryOwner(from.UserName) && !b.owners.IsOwner(ctx, from.UserName) {
		if err := b.owners.Add(ctx, from.UserName); err != nil {
			log.Printf("bootstrap primary owner: %v", err)
		} else {
			log.Printf("[info] primary owner @%s registered", b.config.OwnerUsername)
			if err := b.sendText(msg.Chat.ID, "👑 Welcome Boss! You have been registered as an owner."); err != nil {
				return err
			}
		}
	}

	text, markup := b.homeScreen(ctx, from)
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = markup
	_, err := b.api.Send(reply)
	return err
}

// parseReferrer extracts the referral id from a /start deep-link
// argument. Self-referrals are ignored.
func parseReferrer(args string, selfID int64) *int64 {
	arg := strings.TrimSpace(args)
	if arg == "" {
		return nil
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 || id == selfID {
		return nil
	}
	return &id
}

// homeScreen builds the main screen: one Join button per channel
// (three per row), the verify button, the claim link and the owner
// panel entry for owners.
func (b *Bot) homeScreen(ctx context.Context, from *tgbotapi.User) (string, tgbotapi.InlineKeyboardMarkup) {
	name := strings.TrimSpace(from.FirstName)
	if name == "" {
		name = "friend"
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🔥 <b>Welcome, %s!</b>\n\n", escape(name)))
	builder.WriteString("💥 <b>Earning opportunity live</b>\n\n")
	builder.WriteString("📢 Join every channel below, then hit <b>Verify Joined</b> to claim your reward.\n")
	builder.WriteString(fmt.Sprintf("🎁 Verification pays <b>%d points</b>, and each friend you invite earns you <b>%d</b> more.\n", service.PointsPerJoin, service.PointsPerReferral))
	if b.config.OwnerUsername != "" {
		builder.WriteString(fmt.Sprintf("\n📩 Contact / support: @%s\n", escape(b.config.OwnerUsername)))
	}

	var rows [][]tgbotapi.InlineKeyboardButton

	channels, err := b.channels.List(ctx)
	if err != nil {
		log.Printf("list channels for home screen: %v", err)
	}
	if len(channels) == 0 {
		builder.WriteString("\n⚠️ <b>No channels added yet.</b>\n")
	} else {
		var row []tgbotapi.InlineKeyboardButton
		for _, ch := range channels {
			row = append(row, tgbotapi.NewInlineKeyboardButtonURL("Join ↗️", b.joinURL(ch)))
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Verify Joined", cbVerifyJoin),
		))
	}

	builder.WriteString("\n👇 <b>Claim here:</b>")
	claimLink := b.settings.Get(ctx, model.SettingClaimLink, b.config.ClaimLink)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL("🎁 Claim", claimLink),
	))

	if b.config.OwnerUsername != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("➕ Add Your Channel", "https://t.me/"+b.config.OwnerUsername),
		))
	}

	if b.isOwner(ctx, from) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Owner Panel", cbOwnerPanel),
		))
	}

	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// joinURL picks the best join link for a channel: the stored invite
// link, the public username, a live-fetched invite link, and finally a
// bare t.me fallback.
func (b *Bot) joinURL(ch model.Channel) string {
	if ch.InviteLink != "" {
		return ch.InviteLink
	}
	if ch.Username != "" {
		return "https://t.me/" + ch.Username
	}
	if chatID, err := strconv.ParseInt(ch.ChannelID, 10, 64); err == nil {
		chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})
		if err == nil && chat.InviteLink != "" {
			return chat.InviteLink
		}
	}
	return "https://t.me/"
}

func (b *Bot) editHome(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	text, markup := b.homeScreen(ctx, cb.From)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		// "message is not modified" is not worth surfacing.
		log.Printf("edit home screen: %v", err)
	}
	return nil
}

func (b *Bot) handleVerifyJoin(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	// The latch pre-check answers the callback with the alert; otherwise
	// the callback is answered before the membership pass so the user is
	// not left on a spinner while the per-channel checks run.
	if user, err := b.users.FindByTelegramID(ctx, cb.From.ID); err == nil && user.JoinedAll {
		if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cb.ID, "✅ You have already verified and claimed rewards!")); err != nil {
			log.Printf("callback alert: %v", err)
		}
		return nil
	}

	b.ack(cb, "Checking membership...")

	result, err := b.verify.Verify(ctx, cb.From.ID)
	if err != nil {
		return err
	}

	if result.AlreadyVerified && !result.Awarded {
		// Lost a race with a concurrent verification; the reward is
		// already claimed, show the verified screen.
		return b.editHome(ctx, cb)
	}

	if !result.AllJoined {
		var builder strings.Builder
		builder.WriteString("❌ <b>You haven't joined all channels!</b>\n\nMissing:\n")
		for _, title := range result.Missing {
			builder.WriteString(fmt.Sprintf("- %s\n", escape(title)))
		}
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Try Again", cbStartEarning),
		))
		edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, strings.TrimSpace(builder.String()), markup)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err := b.api.Send(edit)
		return err
	}

	log.Printf("[info] user %d verified, +%d points", cb.From.ID, service.PointsPerJoin)
	text := fmt.Sprintf("✅ <b>Verification successful!</b>\n\nYou earned %d points!", service.PointsPerJoin)
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Home", cbBackHome),
	))
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(edit)
	return err
}

func (b *Bot) handleOwnerPanel(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if !b.isOwner(ctx, cb.From) {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, "⛔ Access denied.")
		_, err := b.api.Send(edit)
		return err
	}

	text := "👑 <b>Owner Control Panel</b>\n\n" +
		"/addowner &lt;username&gt; - Add new owner\n" +
		"/removeowner &lt;username&gt; - Remove owner\n" +
		"/listowners - List all owners\n\n" +
		"📢 <b>Channel management</b>\n" +
		"/addchannel &lt;id|link|@username&gt; - Add channel\n" +
		"/removechannel &lt;id|@username&gt; - Remove channel\n" +
		"/listchannels - List channels\n\n" +
		"🔗 <b>Links</b>\n" +
		"/setclaim &lt;link&gt; - Set claim link\n\n" +
		"📝 <b>Posting</b>\n" +
		"Just send me a message to broadcast it.\n" +
		"/schedule HH:MM &lt;text&gt; - Schedule daily post\n" +
		"/listschedule - List scheduled posts\n" +
		"/deleteschedule &lt;id&gt; - Delete scheduled post"

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Home", cbBackHome),
	))
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	return err
}

// handleMyChatMember reconciles placeholder channels when the bot is
// promoted to admin somewhere: the first placeholder whose stored
// title exactly matches the channel's title gets the real chat id.
// When nothing matches, the promoter is told the raw id instead.
func (b *Bot) handleMyChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) error {
	member := upd.NewChatMember
	if !member.IsAdministrator() && !member.IsCreator() {
		return nil
	}
	if !upd.Chat.IsChannel() {
		return nil
	}

	reconciled, err := b.channels.Reconcile(ctx, upd.Chat)
	if err != nil {
		return err
	}

	if reconciled != nil {
		return b.sendText(upd.From.ID, fmt.Sprintf(
			"✅ <b>Channel ID detected!</b>\n\nMatched '%s' and updated its ID to <code>%s</code>.\nVerification will now work!",
			escape(reconciled.Title), escape(reconciled.ChannelID)))
	}

	return b.sendText(upd.From.ID, fmt.Sprintf(
		"🤖 I was added to <b>%s</b>.\n\nID: <code>%d</code>\n\nIf you added this channel link-only, remove it and add it again with this ID so verification can work.",
		escape(upd.Chat.Title), upd.Chat.ID))
}

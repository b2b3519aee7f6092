package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/model"
	"promo-bot/internal/repository"
	"promo-bot/internal/service"
)

// Privileged commands silently ignore non-owners: no reply means no
// surface for probing which commands exist.

func (b *Bot) handleAddOwner(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	target := strings.TrimSpace(msg.CommandArguments())
	if target == "" {
		return b.sendText(msg.Chat.ID, "Usage: /addowner username")
	}

	if err := b.owners.Add(ctx, target); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("⚠️ Could not add %s. Already exists?", escape(target)))
		}
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Added %s as owner.", escape(target)))
}

func (b *Bot) handleRemoveOwner(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	target := strings.TrimSpace(msg.CommandArguments())
	if target == "" {
		return b.sendText(msg.Chat.ID, "Usage: /removeowner username")
	}

	if b.isPrimaryOwner(target) {
		return b.sendText(msg.Chat.ID, "⛔ Cannot remove the primary owner.")
	}

	removed, err := b.owners.Remove(ctx, target)
	if err != nil {
		return err
	}
	if !removed {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⚠️ %s not found.", escape(target)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Removed %s from owners.", escape(target)))
}

func (b *Bot) handleListOwners(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	owners, err := b.owners.List(ctx)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("👑 <b>Owners</b>\n")
	for _, owner := range owners {
		builder.WriteString(fmt.Sprintf("- @%s\n", escape(owner.Username)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleSetClaim(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	link := strings.TrimSpace(msg.CommandArguments())
	if link == "" {
		return b.sendText(msg.Chat.ID, "Usage: /setclaim <new_link>")
	}

	if err := b.settings.Set(ctx, model.SettingClaimLink, link); err != nil {
		return b.sendText(msg.Chat.ID, "⚠️ Failed to update link.")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Claim link updated to:\n%s", escape(link)))
}

func (b *Bot) handleAddChannel(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return b.sendText(msg.Chat.ID,
			"Usage:\nPublic: /addchannel https://t.me/channel\nPrivate: /addchannel -100xxxx https://t.me/+abcd...")
	}

	ref, err := service.ParseChannelRef(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ Invalid link format. Use https://t.me/username")
	}

	result, err := b.channels.Register(ctx, ref)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return b.sendText(msg.Chat.ID, "⚠️ Channel already exists.")
	case errors.Is(err, service.ErrNotChannel):
		return b.sendText(msg.Chat.ID, "❌ That is not a channel.")
	case errors.Is(err, service.ErrUnresolved):
		return b.sendText(msg.Chat.ID, "❌ Could not find that channel. Ensure the bot is admin if searching by ID, or use a valid public username.")
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Error adding channel: %s", escape(err.Error())))
	}

	if result.Placeholder {
		return b.sendText(msg.Chat.ID,
			"✅ Private link added!\n\n⚠️ <b>Note:</b> Since no ID was provided, the bot cannot verify members for this channel.\nUsers can join via the link, but verification will be skipped (auto-passed).")
	}

	reply := fmt.Sprintf("✅ Channel '%s' added!\nLink: %s", escape(result.Channel.Title), escape(result.Channel.InviteLink))
	switch result.Admin {
	case service.AdminMissing:
		reply += "\n\n⚠️ I am not an admin in that channel. I cannot verify members until I am."
	case service.AdminUnknown:
		reply += "\n\n⚠️ Could not check my admin status there."
	}
	return b.sendText(msg.Chat.ID, reply)
}

func (b *Bot) handleRemoveChannel(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	target := strings.TrimSpace(msg.CommandArguments())
	if target == "" {
		return b.sendRemovalList(ctx, msg.Chat.ID)
	}

	removed, err := b.channels.Remove(ctx, target)
	if errors.Is(err, service.ErrUnresolved) {
		return b.sendText(msg.Chat.ID, "❌ Valid channel not found.")
	}
	if err != nil {
		return err
	}
	if !removed {
		return b.sendText(msg.Chat.ID, "⚠️ Channel not found in database.")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Channel %s removed.", escape(target)))
}

func (b *Bot) sendRemovalList(ctx context.Context, chatID int64) error {
	channels, err := b.channels.List(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return b.sendText(chatID, "⚠️ No channels found to remove.")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🗑 <b>Select channel to remove</b> (total: %d)\n\n", len(channels)))
	for _, ch := range channels {
		handle := "Private/Link"
		if ch.Username != "" {
			handle = "@" + ch.Username
		}
		builder.WriteString(fmt.Sprintf("❌ <code>/removechannel %s</code>\nTitle: %s\nLink: %s\n\n",
			escape(ch.ChannelID), escape(ch.Title), escape(handle)))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleListChannels(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	channels, err := b.channels.List(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return b.sendText(msg.Chat.ID, "No channels added.")
	}

	var builder strings.Builder
	builder.WriteString("📢 <b>Added channels</b>\n")
	for _, ch := range channels {
		handle := "Private"
		if ch.Username != "" {
			handle = "@" + ch.Username
		}
		builder.WriteString(fmt.Sprintf("- %s (%s) <code>ID: %s</code>\n",
			escape(ch.Title), escape(handle), escape(ch.ChannelID)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) error {
	sent, err := b.bcast.BroadcastCopy(ctx, msg.Chat.ID, msg.MessageID)
	if err != nil {
		return err
	}
	log.Printf("[info] broadcast from %d delivered to %d channels", msg.From.ID, sent)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Sent to %d channels.", sent))
}

func (b *Bot) handleSchedule(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return b.sendText(msg.Chat.ID, "Usage: /schedule HH:MM <reply to a message to schedule it, or type text>")
	}
	timeStr := args[0]
	if err := service.ValidateDailyTime(timeStr); err != nil {
		return b.sendText(msg.Chat.ID, "❌ Invalid format. Use HH:MM (24-hour).")
	}

	var payload model.PostPayload
	if reply := msg.ReplyToMessage; reply != nil {
		payload = model.PostPayload{
			Kind:            model.PayloadCopy,
			SourceChatID:    reply.Chat.ID,
			SourceMessageID: reply.MessageID,
		}
	} else {
		text := strings.Join(args[1:], " ")
		if text == "" {
			return b.sendText(msg.Chat.ID, "❌ Provide text or reply to a message.")
		}
		payload = model.PostPayload{Kind: model.PayloadText, Text: text}
	}

	post, err := b.bcast.Schedule(ctx, timeStr, payload)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Post scheduled for %s daily. ID: %d", escape(post.ScheduleTime), post.ID))
}

func (b *Bot) handleListSchedule(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	posts, err := b.bcast.ListSchedules(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return b.sendText(msg.Chat.ID, "No scheduled posts.")
	}

	var builder strings.Builder
	builder.WriteString("📅 <b>Daily schedule</b>\n")
	for _, post := range posts {
		preview := "Media/Copy"
		if payload, err := model.DecodePayload(post.Payload); err == nil {
			preview = payload.Preview()
		}
		builder.WriteString(fmt.Sprintf("ID: <code>%d</code> | Time: <code>%s</code> | %s\n",
			post.ID, escape(post.ScheduleTime), escape(preview)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleDeleteSchedule(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isOwner(ctx, msg.From) {
		return nil
	}

	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.sendText(msg.Chat.ID, "Usage: /deleteschedule ID")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ Schedule ID must be a number.")
	}

	removed, err := b.bcast.Delete(ctx, uint(id))
	if err != nil {
		return err
	}
	if !removed {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⚠️ Schedule %d not found.", id))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Schedule %d deleted.", id))
}

package model

import (
	"strings"
	"time"
)

// PlaceholderPrefix marks channels added by private invite link only.
// Their real chat id is unknown, so membership checks are skipped for
// them until the id is reconciled.
const PlaceholderPrefix = "private_"

// Channel is a managed target for broadcasts and join verification.
// ChannelID holds the Telegram chat id as a string, or a synthetic
// "private_<unix>" placeholder for unresolved private channels.
type Channel struct {
	ID         uint   `gorm:"primaryKey"`
	ChannelID  string `gorm:"uniqueIndex"`
	Title      string
	Username   string
	InviteLink string
	CreatedAt  time.Time
}

// IsPlaceholder reports whether the channel was stored without a real
// chat id and is therefore exempt from membership verification.
func (c Channel) IsPlaceholder() bool {
	return strings.HasPrefix(c.ChannelID, PlaceholderPrefix)
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload kinds for scheduled posts.
const (
	PayloadCopy = "copy"
	PayloadText = "text"
)

// ScheduledPost is a daily recurring broadcast. ScheduleTime is a
// 24-hour "HH:MM" string in server-local time; Payload is the JSON
// form of a PostPayload.
type ScheduledPost struct {
	ID           uint   `gorm:"primaryKey"`
	ScheduleTime string `gorm:"size:5"`
	Payload      string
	CreatedAt    time.Time
}

// PostPayload is the content of a scheduled post. Kind selects the
// variant: "copy" replicates a previously sent message, "text" sends
// literal text.
type PostPayload struct {
	Kind            string `json:"kind"`
	SourceChatID    int64  `json:"source_chat_id,omitempty"`
	SourceMessageID int    `json:"source_message_id,omitempty"`
	Text            string `json:"text,omitempty"`
}

// Encode serializes the payload for storage.
func (p PostPayload) Encode() (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(raw), nil
}

// DecodePayload parses a stored payload, rejecting unknown kinds.
func DecodePayload(raw string) (PostPayload, error) {
	var p PostPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return PostPayload{}, fmt.Errorf("decode payload: %w", err)
	}
	if err := p.validate(); err != nil {
		return PostPayload{}, err
	}
	return p, nil
}

func (p PostPayload) validate() error {
	switch p.Kind {
	case PayloadCopy:
		if p.SourceChatID == 0 || p.SourceMessageID == 0 {
			return fmt.Errorf("copy payload requires source chat and message ids")
		}
	case PayloadText:
		if p.Text == "" {
			return fmt.Errorf("text payload requires text")
		}
	default:
		return fmt.Errorf("unknown payload kind %q", p.Kind)
	}
	return nil
}

// Preview returns a short human-readable summary for schedule listings.
// Truncation is by rune so multi-byte text never gets cut mid-character.
func (p PostPayload) Preview() string {
	if p.Kind == PayloadText {
		if runes := []rune(p.Text); len(runes) > 20 {
			return string(runes[:20])
		}
		return p.Text
	}
	return "Media/Copy"
}

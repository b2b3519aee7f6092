package model

import "time"

// Setting is a mutable runtime configuration entry overriding a
// compiled-in default (e.g. the claim link).
type Setting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex"`
	Value     string
	UpdatedAt time.Time
}

// SettingClaimLink stores the runtime override for the reward claim URL.
const SettingClaimLink = "claim_link"

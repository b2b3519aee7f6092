package model

import "time"

// Owner is a username allowed to run privileged commands.
// Usernames are stored normalized: no "@" prefix, lowercase.
type Owner struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex"`
	CreatedAt time.Time
}

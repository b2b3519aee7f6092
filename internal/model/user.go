package model

import "time"

// User stores a bot user with their referral and reward state.
// ReferrerID is set once at first contact and never changed.
// JoinedAll latches false -> true exactly once; the join reward is
// tied to that transition.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	Points     int64 `gorm:"default:0"`
	ReferrerID *int64
	JoinedAll  bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

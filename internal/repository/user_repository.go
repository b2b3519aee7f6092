package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promo-bot/internal/model"
)

// UserRepository handles CRUD for bot users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate finds a user by Telegram id, creating the record on
// first contact. The referrer is only set on creation; an existing
// user's referrer is never changed. The username is refreshed on every
// call since Telegram usernames go stale.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string, referrerID *int64) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		if username != "" && username != user.Username {
			if err := db.Model(&user).Update("username", username).Error; err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{
			TelegramID: telegramID,
			Username:   username,
			ReferrerID: referrerID,
		}
		if err := db.Create(&user).Error; err != nil {
			// Lost a create race: the user exists now, fetch it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return r.FindByTelegramID(ctx, telegramID)
			}
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddPoints increments a user's point balance.
func (r *UserRepository) AddPoints(ctx context.Context, telegramID int64, amount int64) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Update("points", gorm.Expr("points + ?", amount)).Error; err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

// AwardJoinBonus atomically sets the joined-all latch and credits the
// join reward, but only if the latch is still unset. It reports
// whether the award was applied; a false return means another call
// already claimed it (or the user does not exist).
func (r *UserRepository) AwardJoinBonus(ctx context.Context, telegramID int64, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("telegram_id = ? AND joined_all = ?", telegramID, false).
		Updates(map[string]interface{}{
			"joined_all": true,
			"points":     gorm.Expr("points + ?", amount),
		})
	if res.Error != nil {
		return false, fmt.Errorf("award join bonus: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReferralCount returns how many users name the given user as referrer.
func (r *UserRepository) ReferralCount(ctx context.Context, telegramID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("referrer_id = ?", telegramID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promo-bot/internal/model"
)

// ChannelRepository handles CRUD for managed channels.
type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Add stores a channel record. Returns ErrDuplicate when a record with
// the same channel id already exists.
func (r *ChannelRepository) Add(ctx context.Context, channel *model.Channel) error {
	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create channel: %w", err)
	}
	return nil
}

// List returns all channels in registration order.
func (r *ChannelRepository) List(ctx context.Context) ([]model.Channel, error) {
	var channels []model.Channel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// ListPlaceholders returns channels still waiting for id reconciliation.
func (r *ChannelRepository) ListPlaceholders(ctx context.Context) ([]model.Channel, error) {
	var channels []model.Channel
	if err := r.db.WithContext(ctx).
		Where("channel_id LIKE ?", model.PlaceholderPrefix+"%").
		Order("id ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// Delete removes a channel by its stored channel id and reports
// whether a record existed.
func (r *ChannelRepository) Delete(ctx context.Context, channelID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&model.Channel{})
	if res.Error != nil {
		return false, fmt.Errorf("delete channel: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateChannelID replaces a placeholder id with the real chat id and
// corrects the title, used by placeholder reconciliation.
func (r *ChannelRepository) UpdateChannelID(ctx context.Context, oldID, newID, newTitle string) error {
	updates := map[string]interface{}{"channel_id": newID}
	if newTitle != "" {
		updates["title"] = newTitle
	}
	if err := r.db.WithContext(ctx).Model(&model.Channel{}).
		Where("channel_id = ?", oldID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update channel id: %w", err)
	}
	return nil
}

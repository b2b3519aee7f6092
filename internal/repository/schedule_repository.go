package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"promo-bot/internal/model"
)

// ScheduleRepository handles CRUD for scheduled posts.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, post *model.ScheduledPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create scheduled post: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) List(ctx context.Context) ([]model.ScheduledPost, error) {
	var posts []model.ScheduledPost
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id uint) (*model.ScheduledPost, error) {
	var post model.ScheduledPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a scheduled post and reports whether a row existed.
func (r *ScheduleRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.ScheduledPost{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete scheduled post: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

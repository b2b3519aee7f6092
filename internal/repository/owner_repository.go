package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promo-bot/internal/config"
	"promo-bot/internal/model"
)

// OwnerRepository manages the privileged-user list.
type OwnerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Add stores a normalized owner username. Returns ErrDuplicate if the
// username is already registered.
func (r *OwnerRepository) Add(ctx context.Context, username string) error {
	owner := model.Owner{Username: config.NormalizeUsername(username)}
	if err := r.db.WithContext(ctx).Create(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

// IsOwner reports whether the username belongs to a registered owner.
// Empty usernames are never owners.
func (r *OwnerRepository) IsOwner(ctx context.Context, username string) bool {
	normalized := config.NormalizeUsername(username)
	if normalized == "" {
		return false
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Owner{}).
		Where("username = ?", normalized).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Remove deletes an owner and reports whether a record was removed.
func (r *OwnerRepository) Remove(ctx context.Context, username string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("username = ?", config.NormalizeUsername(username)).
		Delete(&model.Owner{})
	if res.Error != nil {
		return false, fmt.Errorf("delete owner: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *OwnerRepository) List(ctx context.Context) ([]model.Owner, error) {
	var owners []model.Owner
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrDuplicateUpdate is returned by Insert when the update_id is already
// stored, including the case where a concurrent delivery won the insert race.
var ErrDuplicateUpdate = errors.New("update already recorded")

type UpdateRepository interface {
	Exists(ctx context.Context, updateID int64) (bool, error)
	Insert(ctx context.Context, update *TelegramUpdate) error
}

type GormUpdateRepository struct {
	db *gorm.DB
}

func NewUpdateRepository(db *gorm.DB) UpdateRepository {
	return &GormUpdateRepository{db: db}
}

func (r *GormUpdateRepository) Exists(ctx context.Context, updateID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TelegramUpdate{}).
		Where("update_id = ?", updateID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check update existence: %w", err)
	}
	return count > 0, nil
}

func (r *GormUpdateRepository) Insert(ctx context.Context, update *TelegramUpdate) error {
	if err := r.db.WithContext(ctx).Create(update).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUpdate
		}
		return fmt.Errorf("failed to insert update: %w", err)
	}
	return nil
}

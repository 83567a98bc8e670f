package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetBargainCache returns the user's cache row, or nil when none exists.
func (s *Store) GetBargainCache(ctx context.Context, userID uuid.UUID) (*models.BargainCache, error) {
	var row models.BargainCache
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bargain cache: %w", err)
	}
	return &row, nil
}

// SaveBargainCache overwrites the whole row for the user.
func (s *Store) SaveBargainCache(ctx context.Context, row *models.BargainCache) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "last_checked_at", "is_rate_limited"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save bargain cache: %w", err)
	}
	return nil
}

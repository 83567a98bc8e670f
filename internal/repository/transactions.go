package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

// TransactionsSince returns a user's transactions dated on or after since.
func (s *Store) TransactionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/strazyuk/ProjectSpara/internal/models"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LatestBenchmarkAt returns the newest created_at in a category. ok is false
// when the category has no benchmarks.
func (s *Store) LatestBenchmarkAt(ctx context.Context, category string) (time.Time, bool, error) {
	var latest models.MarketBenchmark
	err := s.db.WithContext(ctx).
		Select("created_at").
		Where("category = ?", category).
		Order("created_at DESC").
		Take(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to check benchmark freshness: %w", err)
	}
	return latest.CreatedAt, true, nil
}

func (s *Store) BenchmarkExists(ctx context.Context, serviceName, tierName string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.MarketBenchmark{}).
		Where("service_name = ? AND tier_name = ?", serviceName, tierName).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up benchmark: %w", err)
	}
	return count > 0, nil
}

func (s *Store) CreateBenchmark(ctx context.Context, b *models.MarketBenchmark) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create benchmark: %w", err)
	}
	return nil
}

func (s *Store) BenchmarksByCategory(ctx context.Context, category string) ([]models.MarketBenchmark, error) {
	var out []models.MarketBenchmark
	err := s.db.WithContext(ctx).
		Where("category = ?", category).
		Order("monthly_price ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmarks: %w", err)
	}
	return out, nil
}

// BenchmarksMatchingName returns benchmarks whose service name contains name,
// ignoring case. LIKE wildcards in name match literally.
func (s *Store) BenchmarksMatchingName(ctx context.Context, name string) ([]models.MarketBenchmark, error) {
	var out []models.MarketBenchmark
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(name))) + "%"
	err := s.db.WithContext(ctx).
		Where(`LOWER(service_name) LIKE ? ESCAPE '\'`, pattern).
		Order("monthly_price ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search benchmarks: %w", err)
	}
	return out, nil
}

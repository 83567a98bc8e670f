package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MarketBenchmark is a market price point for one tier of a service.
// Features is free-form and passed through untouched.
type MarketBenchmark struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceName  string          `gorm:"size:255;not null;index:idx_benchmarks_service_tier,priority:1" json:"service_name"`
	TierName     string          `gorm:"size:255;not null;index:idx_benchmarks_service_tier,priority:2" json:"tier_name"`
	MonthlyPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_price"`
	Category     string          `gorm:"size:100;index" json:"category"`
	Features     datatypes.JSON  `gorm:"type:jsonb" json:"features"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (b *MarketBenchmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (MarketBenchmark) TableName() string {
	return "market_benchmarks"
}

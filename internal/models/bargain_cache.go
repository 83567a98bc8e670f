package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Bargain opportunity types.
const (
	BargainDowngrade        = "Downgrade"
	BargainCompetitorSwitch = "Competitor Switch"
	BargainFreeAlternative  = "Free Alternative"
)

// BargainOpportunity is a cheaper substitute for one active subscription.
type BargainOpportunity struct {
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	Original       string          `json:"original"`
	Alternative    string          `json:"alternative"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	Reason         string          `json:"reason"`
	Type           string          `json:"type"`
}

// BargainCache holds the last computed bargain list for a user. One row per user.
type BargainCache struct {
	UserID        uuid.UUID                                `gorm:"type:uuid;primaryKey" json:"user_id"`
	Data          datatypes.JSONType[[]BargainOpportunity] `json:"data"`
	LastCheckedAt time.Time                                `gorm:"not null" json:"last_checked_at"`
	IsRateLimited bool                                     `gorm:"not null" json:"is_rate_limited"`
}

func (BargainCache) TableName() string {
	return "bargain_cache"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction is a synced bank transaction. Rows are written by the sync
// integration and only read by detection.
type Transaction struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	AccountID             string          `gorm:"size:255;not null" json:"account_id"`
	ProviderTransactionID string          `gorm:"size:255;index" json:"provider_transaction_id"`
	MerchantName          *string         `gorm:"size:255" json:"merchant_name"`
	Name                  string          `gorm:"size:500;not null" json:"name"`
	Amount                decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date                  time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Category              *string         `gorm:"size:100" json:"category"`
	RawPayload            datatypes.JSON  `gorm:"type:jsonb" json:"raw_payload"`
	CreatedAt             time.Time       `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Transaction) TableName() string {
	return "transactions"
}

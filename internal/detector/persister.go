package detector

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/strazyuk/ProjectSpara/internal/classifier"
	"github.com/strazyuk/ProjectSpara/internal/metrics"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

// SubscriptionStore is the write side of detection.
type SubscriptionStore interface {
	HasActiveSubscription(ctx context.Context, userID uuid.UUID, name string) (bool, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
}

// Detection is a group the classifier confirmed as a subscription.
type Detection struct {
	Group   MerchantGroup
	Verdict classifier.Verdict
}

// Persister writes confirmed detections. The first subscription saved under a
// name wins: later detections with the same name are skipped, not merged.
type Persister struct {
	store  SubscriptionStore
	logger *slog.Logger
}

func NewPersister(store SubscriptionStore, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{store: store, logger: logger}
}

// Save writes each detection that has no active duplicate and returns the
// number written. Storage failures skip the affected detection only.
func (p *Persister) Save(ctx context.Context, userID uuid.UUID, detections []Detection) int {
	saved := 0
	for _, d := range detections {
		name := d.Verdict.NormalizedName

		exists, err := p.store.HasActiveSubscription(ctx, userID, name)
		if err != nil {
			p.logger.Error("subscription lookup failed", "user_id", userID.String(), "action", "detect", "subscription", name, "error", err)
			continue
		}
		if exists {
			p.logger.Debug("subscription already exists", "user_id", userID.String(), "subscription", name)
			continue
		}

		sub := &models.Subscription{
			UserID:       userID,
			Name:         name,
			MerchantName: d.Group.Key,
			Amount:       averageAmount(d.Group.Transactions),
			Category:     d.Verdict.Category,
			// Cadence is not inferred from transaction dates yet.
			Frequency: models.FrequencyMonthly,
			IsActive:  true,
		}
		if err := p.store.CreateSubscription(ctx, sub); err != nil {
			p.logger.Error("failed to save subscription", "user_id", userID.String(), "action", "detect", "subscription", name, "error", err)
			continue
		}
		saved++
	}

	metrics.SubscriptionsSaved.Add(float64(saved))
	return saved
}

func averageAmount(txs []models.Transaction) decimal.Decimal {
	if len(txs) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(txs))))
}

// Package detector finds recurring subscriptions in a user's transaction
// history: group by merchant, keep repeated merchants, ask the classifier,
// persist what it confirms.
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/classifier"
	"github.com/strazyuk/ProjectSpara/internal/metrics"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

// DefaultWindow is how far back detection looks.
const DefaultWindow = 180 * 24 * time.Hour

// Classifier judges one candidate group. A nil verdict means no answer.
type Classifier interface {
	Classify(ctx context.Context, cand classifier.Candidate) *classifier.Verdict
}

type TransactionSource interface {
	TransactionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Transaction, error)
}

type Store interface {
	TransactionSource
	SubscriptionStore
}

// Result summarizes one detection run. Detected counts classifier
// confirmations; Saved excludes duplicates and failed writes.
type Result struct {
	Detected int `json:"detected"`
	Saved    int `json:"saved"`
}

type Detector struct {
	transactions TransactionSource
	classifier   Classifier
	persister    *Persister
	window       time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

type Option func(*Detector)

// WithWindow overrides the trailing window of transactions considered.
func WithWindow(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.window = d
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(det *Detector) {
		det.now = now
	}
}

func New(store Store, cls Classifier, logger *slog.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "detector")
	d := &Detector{
		transactions: store,
		classifier:   cls,
		persister:    NewPersister(store, logger),
		window:       DefaultWindow,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs detection for one user. Only a failure to read transactions
// fails the run; every per-candidate failure is absorbed.
func (d *Detector) Detect(ctx context.Context, userID uuid.UUID) (*Result, error) {
	since := d.now().Add(-d.window)
	txs, err := d.transactions.TransactionsSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("detect subscriptions: %w", err)
	}
	if len(txs) == 0 {
		d.logger.Info("no transactions to analyze", "user_id", userID.String())
		return &Result{}, nil
	}

	candidates := FilterCandidates(GroupTransactions(txs))
	metrics.DetectionCandidates.Add(float64(len(candidates)))
	d.logger.Info("candidate groups found", "user_id", userID.String(), "transactions", len(txs), "candidates", len(candidates))

	var detections []Detection
	for _, group := range candidates {
		verdict := d.classifier.Classify(ctx, toCandidate(group))
		if verdict == nil || !verdict.IsSubscription {
			continue
		}
		detections = append(detections, Detection{Group: group, Verdict: *verdict})
	}

	saved := d.persister.Save(ctx, userID, detections)
	d.logger.Info("detection complete", "user_id", userID.String(), "detected", len(detections), "saved", saved)

	return &Result{Detected: len(detections), Saved: saved}, nil
}

func toCandidate(g MerchantGroup) classifier.Candidate {
	samples := make([]classifier.TransactionSample, len(g.Transactions))
	for i, t := range g.Transactions {
		samples[i] = classifier.TransactionSample{
			Date:   t.Date.Format("2006-01-02"),
			Amount: t.Amount,
			Name:   t.Name,
		}
	}
	return classifier.Candidate{MerchantKey: g.Key, Transactions: samples}
}

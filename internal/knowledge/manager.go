// Package knowledge keeps the market benchmark table current. A category is
// researched through the classifier only when its newest benchmark is older
// than the freshness window.
package knowledge

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/strazyuk/ProjectSpara/internal/classifier"
	"github.com/strazyuk/ProjectSpara/internal/metrics"
	"github.com/strazyuk/ProjectSpara/internal/models"
	"gorm.io/datatypes"
)

const DefaultFreshness = 24 * time.Hour

// Benchmark origins, used as the metrics label.
const (
	OriginResearch = "research"
	OriginSeed     = "seed"
)

type Store interface {
	LatestBenchmarkAt(ctx context.Context, category string) (time.Time, bool, error)
	BenchmarkExists(ctx context.Context, serviceName, tierName string) (bool, error)
	CreateBenchmark(ctx context.Context, b *models.MarketBenchmark) error
}

type Researcher interface {
	ResearchCategory(ctx context.Context, category string) []classifier.BenchmarkDraft
}

type Manager struct {
	store      Store
	researcher Researcher
	freshness  time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Manager)

func WithFreshness(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.freshness = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(store Store, researcher Researcher, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:      store,
		researcher: researcher,
		freshness:  DefaultFreshness,
		now:        time.Now,
		logger:     logger.With("component", "knowledge"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureCategoryKnowledge researches the category unless it already has a
// benchmark younger than the freshness window, and returns the number of
// benchmarks inserted. Nothing here is fatal to the caller.
func (m *Manager) EnsureCategoryKnowledge(ctx context.Context, category string) int {
	category = strings.TrimSpace(category)
	if category == "" {
		return 0
	}

	if m.isFresh(ctx, category) {
		return 0
	}

	m.logger.Info("category knowledge missing or stale, researching", "category", category)
	drafts := m.researcher.ResearchCategory(ctx, category)
	if len(drafts) == 0 {
		return 0
	}

	inserted := 0
	for _, d := range drafts {
		if d.Category == "" {
			d.Category = category
		}
		if m.insertIfAbsent(ctx, d, OriginResearch) {
			inserted++
		}
	}

	m.logger.Info("category knowledge updated", "category", category, "researched", len(drafts), "inserted", inserted)
	return inserted
}

// isFresh treats a failed lookup as stale.
func (m *Manager) isFresh(ctx context.Context, category string) bool {
	latest, ok, err := m.store.LatestBenchmarkAt(ctx, category)
	if err != nil {
		m.logger.Warn("freshness check failed", "category", category, "error", err)
		return false
	}
	return ok && m.now().Sub(latest) < m.freshness
}

// insertIfAbsent writes the benchmark unless (service_name, tier_name) is
// already present. The check and the insert are not atomic.
func (m *Manager) insertIfAbsent(ctx context.Context, d classifier.BenchmarkDraft, origin string) bool {
	exists, err := m.store.BenchmarkExists(ctx, d.ServiceName, d.TierName)
	if err != nil {
		m.logger.Error("benchmark lookup failed", "service", d.ServiceName, "tier", d.TierName, "error", err)
		return false
	}
	if exists {
		return false
	}

	b := &models.MarketBenchmark{
		ServiceName:  d.ServiceName,
		TierName:     d.TierName,
		MonthlyPrice: d.MonthlyPrice,
		Category:     d.Category,
	}
	if len(d.Features) > 0 {
		features, err := json.Marshal(d.Features)
		if err != nil {
			m.logger.Warn("dropping unencodable features", "service", d.ServiceName, "error", err)
		} else {
			b.Features = datatypes.JSON(features)
		}
	}

	if err := m.store.CreateBenchmark(ctx, b); err != nil {
		m.logger.Error("failed to insert benchmark", "service", d.ServiceName, "tier", d.TierName, "error", err)
		return false
	}
	metrics.BenchmarksInserted.WithLabelValues(origin).Inc()
	return true
}

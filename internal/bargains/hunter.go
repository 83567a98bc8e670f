package bargains

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/metrics"
	"github.com/strazyuk/ProjectSpara/internal/models"
	"gorm.io/datatypes"
)

// DefaultCacheTTL is how long a computed result is served on demand.
const DefaultCacheTTL = 12 * time.Hour

// Result sources.
const (
	SourceCache        = "cache"
	SourceShortCircuit = "short_circuit"
	SourceFresh        = "fresh"
)

type CacheStore interface {
	GetBargainCache(ctx context.Context, userID uuid.UUID) (*models.BargainCache, error)
	SaveBargainCache(ctx context.Context, row *models.BargainCache) error
}

type SubscriptionSource interface {
	ActiveSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}

type Store interface {
	CacheStore
	SubscriptionSource
}

// HuntOptions tune a single hunt. MaxAge overrides the hunter's TTL when
// positive. Force recomputes regardless of the cache age.
type HuntOptions struct {
	MaxAge time.Duration
	Force  bool
}

type HuntResult struct {
	Opportunities []models.BargainOpportunity `json:"data"`
	Source        string                      `json:"source"`
	LastCheckedAt time.Time                   `json:"last_checked_at"`
}

// Hunter serves bargain results from the per-user cache and recomputes them
// through the matcher when the cache is stale.
type Hunter struct {
	store   Store
	matcher *Matcher
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type HunterOption func(*Hunter)

func WithCacheTTL(d time.Duration) HunterOption {
	return func(h *Hunter) {
		if d > 0 {
			h.ttl = d
		}
	}
}

func WithClock(now func() time.Time) HunterOption {
	return func(h *Hunter) {
		h.now = now
	}
}

func NewHunter(store Store, matcher *Matcher, logger *slog.Logger, opts ...HunterOption) *Hunter {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hunter{
		store:   store,
		matcher: matcher,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		logger:  logger.With("component", "bargain_hunter"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hunt returns the user's bargain opportunities. A cached result younger than
// the threshold is returned verbatim. Otherwise the result is recomputed and
// the cache row overwritten, even when the new result is empty. Users without
// active subscriptions get an empty result without calling the matcher; their
// cache row is only written when one already exists or the hunt is forced.
func (h *Hunter) Hunt(ctx context.Context, userID uuid.UUID, opts HuntOptions) (*HuntResult, error) {
	maxAge := h.ttl
	if opts.MaxAge > 0 {
		maxAge = opts.MaxAge
	}

	row := h.cacheRow(ctx, userID)
	if !opts.Force && row != nil && h.now().Sub(row.LastCheckedAt) < maxAge {
		metrics.BargainHunts.WithLabelValues(SourceCache).Inc()
		data := row.Data.Data()
		if data == nil {
			data = []models.BargainOpportunity{}
		}
		return &HuntResult{
			Opportunities: data,
			Source:        SourceCache,
			LastCheckedAt: row.LastCheckedAt,
		}, nil
	}

	subs, err := h.store.ActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("hunt bargains: %w", err)
	}
	checkedAt := h.now()
	if len(subs) == 0 {
		opportunities := []models.BargainOpportunity{}
		if opts.Force || row != nil {
			h.save(ctx, userID, opportunities, checkedAt)
		}
		metrics.BargainHunts.WithLabelValues(SourceShortCircuit).Inc()
		return &HuntResult{
			Opportunities: opportunities,
			Source:        SourceShortCircuit,
			LastCheckedAt: checkedAt,
		}, nil
	}

	h.logger.Info("hunting bargains", "user_id", userID.String(), "subscriptions", len(subs), "forced", opts.Force)
	opportunities := h.matcher.MatchAll(ctx, subs)
	h.save(ctx, userID, opportunities, checkedAt)

	metrics.BargainHunts.WithLabelValues(SourceFresh).Inc()
	return &HuntResult{
		Opportunities: opportunities,
		Source:        SourceFresh,
		LastCheckedAt: checkedAt,
	}, nil
}

// cacheRow reads the user's cache row. A failed read is a miss.
func (h *Hunter) cacheRow(ctx context.Context, userID uuid.UUID) *models.BargainCache {
	row, err := h.store.GetBargainCache(ctx, userID)
	if err != nil {
		h.logger.Warn("bargain cache read failed", "user_id", userID.String(), "error", err)
		return nil
	}
	return row
}

// save overwrites the cache row. A failed write is logged and the computed
// result is still served.
func (h *Hunter) save(ctx context.Context, userID uuid.UUID, opportunities []models.BargainOpportunity, checkedAt time.Time) {
	row := &models.BargainCache{
		UserID:        userID,
		Data:          datatypes.NewJSONType(opportunities),
		LastCheckedAt: checkedAt,
	}
	if err := h.store.SaveBargainCache(ctx, row); err != nil {
		h.logger.Error("failed to update bargain cache", "user_id", userID.String(), "error", err)
	}
}

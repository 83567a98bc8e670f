// Package bargains matches active subscriptions against market benchmarks and
// caches the resulting opportunities per user.
package bargains

import (
	"context"
	"log/slog"
	"strings"

	"github.com/strazyuk/ProjectSpara/internal/classifier"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

type BenchmarkStore interface {
	BenchmarksByCategory(ctx context.Context, category string) ([]models.MarketBenchmark, error)
	BenchmarksMatchingName(ctx context.Context, name string) ([]models.MarketBenchmark, error)
}

// KnowledgeEnsurer freshens a benchmark category before it is read.
type KnowledgeEnsurer interface {
	EnsureCategoryKnowledge(ctx context.Context, category string) int
}

// Judge picks the best substitute among strictly cheaper alternatives, or
// returns nil when there is none.
type Judge interface {
	JudgeBargain(ctx context.Context, offer classifier.Offer) *models.BargainOpportunity
}

type Matcher struct {
	benchmarks BenchmarkStore
	knowledge  KnowledgeEnsurer
	judge      Judge
	logger     *slog.Logger
}

func NewMatcher(benchmarks BenchmarkStore, knowledge KnowledgeEnsurer, judge Judge, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		benchmarks: benchmarks,
		knowledge:  knowledge,
		judge:      judge,
		logger:     logger.With("component", "bargain_matcher"),
	}
}

// MatchAll runs Match over subs in order. A subscription yields at most one
// opportunity.
func (m *Matcher) MatchAll(ctx context.Context, subs []models.Subscription) []models.BargainOpportunity {
	out := make([]models.BargainOpportunity, 0, len(subs))
	for _, sub := range subs {
		if opp := m.Match(ctx, sub); opp != nil {
			out = append(out, *opp)
		}
	}
	return out
}

// Match looks for a cheaper substitute for one subscription. Only benchmarks
// priced strictly below the subscription are shown to the judge, and the
// judge is not called at all when there are none.
func (m *Matcher) Match(ctx context.Context, sub models.Subscription) *models.BargainOpportunity {
	category := strings.TrimSpace(sub.Category)
	if category == "" {
		category = strings.TrimSpace(sub.Name)
	}
	m.knowledge.EnsureCategoryKnowledge(ctx, category)

	candidates := m.candidates(ctx, sub, category)
	cheaper := make([]models.MarketBenchmark, 0, len(candidates))
	for _, b := range candidates {
		if b.MonthlyPrice.LessThan(sub.Amount) {
			cheaper = append(cheaper, b)
		}
	}
	if len(cheaper) == 0 {
		m.logger.Debug("no cheaper benchmarks", "subscription", sub.Name, "category", category, "benchmarks", len(candidates))
		return nil
	}

	description := sub.MerchantName
	if description == "" {
		description = sub.Name
	}
	opp := m.judge.JudgeBargain(ctx, classifier.Offer{
		Name:         sub.Name,
		Price:        sub.Amount,
		Description:  description,
		Alternatives: cheaper,
	})
	if opp == nil {
		return nil
	}

	opp.SubscriptionID = sub.ID
	opp.Type = normalizeType(opp.Type, opp, sub)
	return opp
}

// candidates reads benchmarks by exact category, falling back to a
// substring match on the subscription name. Read failures count as empty.
func (m *Matcher) candidates(ctx context.Context, sub models.Subscription, category string) []models.MarketBenchmark {
	byCategory, err := m.benchmarks.BenchmarksByCategory(ctx, category)
	if err != nil {
		m.logger.Error("benchmark lookup failed", "category", category, "error", err)
	}
	if len(byCategory) > 0 {
		return byCategory
	}

	byName, err := m.benchmarks.BenchmarksMatchingName(ctx, sub.Name)
	if err != nil {
		m.logger.Error("benchmark search failed", "subscription", sub.Name, "error", err)
		return nil
	}
	return byName
}

var bargainTypes = []string{
	models.BargainDowngrade,
	models.BargainCompetitorSwitch,
	models.BargainFreeAlternative,
}

// normalizeType maps the judge's label onto the known types. A missing label
// is inferred: saving the whole price means a free alternative.
func normalizeType(label string, opp *models.BargainOpportunity, sub models.Subscription) string {
	label = strings.TrimSpace(label)
	for _, t := range bargainTypes {
		if strings.EqualFold(label, t) {
			return t
		}
	}
	if label == "" && opp.MonthlySavings.GreaterThanOrEqual(sub.Amount) {
		return models.BargainFreeAlternative
	}
	return models.BargainCompetitorSwitch
}

// Package classifier wraps the external reasoning service. Every call is a
// single best-effort attempt: failures are logged and reported as "no result",
// never returned to the caller.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/strazyuk/ProjectSpara/internal/metrics"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

// Request kinds, used as the metrics label.
const (
	KindSubscription = "subscription"
	KindResearch     = "research"
	KindBargain      = "bargain"
)

var errNoJSON = errors.New("no JSON found in response")

// Candidate is a merchant group sent for subscription classification.
type Candidate struct {
	MerchantKey  string
	Transactions []TransactionSample
}

// TransactionSample is the trimmed transaction shape the model sees.
type TransactionSample struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Name   string          `json:"name"`
}

// Verdict is the model's answer for one candidate.
type Verdict struct {
	IsSubscription bool
	NormalizedName string
	Category       string
	Confidence     float64
}

// BenchmarkDraft is one researched price point, not yet stored.
type BenchmarkDraft struct {
	ServiceName  string
	TierName     string
	MonthlyPrice decimal.Decimal
	Category     string
	Features     map[string]any
}

// Offer describes a subscription and the strictly cheaper benchmarks it may
// be swapped for.
type Offer struct {
	Name         string
	Price        decimal.Decimal
	Description  string
	Alternatives []models.MarketBenchmark
}

type Client struct {
	completer Completer
	logger    *slog.Logger
}

func NewClient(completer Completer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		completer: completer,
		logger:    logger.With("component", "classifier", "provider", completer.Name()),
	}
}

// Classify asks whether a candidate group is a subscription. It returns nil
// when the service fails or its answer does not fit the verdict schema.
func (c *Client) Classify(ctx context.Context, cand Candidate) *Verdict {
	txs, err := json.MarshalIndent(samplesForPrompt(cand.Transactions), "", "  ")
	if err != nil {
		c.logger.Error("failed to encode candidate", "merchant", cand.MerchantKey, "error", err)
		return nil
	}
	prompt := fmt.Sprintf(subscriptionPromptTemplate, cand.MerchantKey, txs)

	var raw struct {
		IsSubscription *bool    `json:"is_subscription"`
		NormalizedName string   `json:"normalized_name"`
		Category       string   `json:"category"`
		Confidence     *float64 `json:"confidence"`
	}
	if !c.complete(ctx, KindSubscription, prompt, &raw, "merchant", cand.MerchantKey) {
		return nil
	}

	if raw.IsSubscription == nil {
		c.reject(KindSubscription, "missing is_subscription", "merchant", cand.MerchantKey)
		return nil
	}
	v := &Verdict{
		IsSubscription: *raw.IsSubscription,
		NormalizedName: strings.TrimSpace(raw.NormalizedName),
		Category:       strings.TrimSpace(raw.Category),
	}
	if v.IsSubscription && v.NormalizedName == "" {
		c.reject(KindSubscription, "missing normalized_name", "merchant", cand.MerchantKey)
		return nil
	}
	if raw.Confidence != nil {
		v.Confidence = clamp(*raw.Confidence, 0, 1)
	}

	metrics.ClassifierRequests.WithLabelValues(KindSubscription, metrics.OutcomeOK).Inc()
	return v
}

// ResearchCategory asks for market benchmarks in a category. The answer is
// expected under "benchmarks", but any top-level list is accepted. Entries
// that lack a name, a tier or a price are dropped.
func (c *Client) ResearchCategory(ctx context.Context, category string) []BenchmarkDraft {
	prompt := fmt.Sprintf(researchPromptTemplate, category, category)

	var doc json.RawMessage
	if !c.complete(ctx, KindResearch, prompt, &doc, "category", category) {
		return nil
	}

	entries, ok := benchmarkList(doc)
	if !ok {
		c.reject(KindResearch, "no benchmark list", "category", category)
		return nil
	}

	drafts := make([]BenchmarkDraft, 0, len(entries))
	for _, entry := range entries {
		var raw struct {
			ServiceName  string              `json:"service_name"`
			TierName     string              `json:"tier_name"`
			MonthlyPrice decimal.NullDecimal `json:"monthly_price"`
			Category     string              `json:"category"`
			Features     map[string]any      `json:"features"`
		}
		if err := json.Unmarshal(entry, &raw); err != nil {
			c.logger.Warn("skipping malformed benchmark", "category", category, "error", err)
			continue
		}
		if strings.TrimSpace(raw.ServiceName) == "" || strings.TrimSpace(raw.TierName) == "" || !raw.MonthlyPrice.Valid {
			continue
		}
		drafts = append(drafts, BenchmarkDraft{
			ServiceName:  strings.TrimSpace(raw.ServiceName),
			TierName:     strings.TrimSpace(raw.TierName),
			MonthlyPrice: raw.MonthlyPrice.Decimal,
			Category:     strings.TrimSpace(raw.Category),
			Features:     raw.Features,
		})
	}

	outcome := metrics.OutcomeOK
	if len(drafts) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ClassifierRequests.WithLabelValues(KindResearch, outcome).Inc()
	return drafts
}

// JudgeBargain asks for the single best replacement among the offer's
// alternatives. It returns nil when the model finds none (monthly_savings of
// zero or less) or the call fails. SubscriptionID is left for the caller.
func (c *Client) JudgeBargain(ctx context.Context, offer Offer) *models.BargainOpportunity {
	current, err := json.MarshalIndent(map[string]any{
		"name":        offer.Name,
		"price":       offer.Price.InexactFloat64(),
		"description": offer.Description,
	}, "", "  ")
	if err != nil {
		c.logger.Error("failed to encode subscription", "subscription", offer.Name, "error", err)
		return nil
	}
	alternatives, err := json.MarshalIndent(alternativesForPrompt(offer.Alternatives), "", "  ")
	if err != nil {
		c.logger.Error("failed to encode alternatives", "subscription", offer.Name, "error", err)
		return nil
	}
	prompt := fmt.Sprintf(bargainPromptTemplate, current, alternatives)

	var raw struct {
		Original       string              `json:"original"`
		Alternative    string              `json:"alternative"`
		MonthlySavings decimal.NullDecimal `json:"monthly_savings"`
		Reason         string              `json:"reason"`
		Type           string              `json:"type"`
	}
	if !c.complete(ctx, KindBargain, prompt, &raw, "subscription", offer.Name) {
		return nil
	}

	if !raw.MonthlySavings.Valid || !raw.MonthlySavings.Decimal.IsPositive() {
		metrics.ClassifierRequests.WithLabelValues(KindBargain, metrics.OutcomeEmpty).Inc()
		return nil
	}

	metrics.ClassifierRequests.WithLabelValues(KindBargain, metrics.OutcomeOK).Inc()
	return &models.BargainOpportunity{
		Original:       strings.TrimSpace(raw.Original),
		Alternative:    strings.TrimSpace(raw.Alternative),
		MonthlySavings: raw.MonthlySavings.Decimal,
		Reason:         strings.TrimSpace(raw.Reason),
		Type:           strings.TrimSpace(raw.Type),
	}
}

// complete runs one request and decodes the answer into out. Transport and
// parse failures are logged and counted here.
func (c *Client) complete(ctx context.Context, kind, prompt string, out any, attrs ...any) bool {
	content, err := c.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		c.logger.Error("classifier request failed", append(attrs, "kind", kind, "error", err)...)
		metrics.ClassifierRequests.WithLabelValues(kind, metrics.OutcomeTransportError).Inc()
		return false
	}

	if err := decodeJSON(content, out); err != nil {
		c.logger.Warn("unparseable classifier response", append(attrs, "kind", kind, "error", err)...)
		metrics.ClassifierRequests.WithLabelValues(kind, metrics.OutcomeParseError).Inc()
		return false
	}
	return true
}

func (c *Client) reject(kind, reason string, attrs ...any) {
	c.logger.Warn("classifier response failed schema check", append(attrs, "kind", kind, "reason", reason)...)
	metrics.ClassifierRequests.WithLabelValues(kind, metrics.OutcomeSchemaError).Inc()
}

// benchmarkList finds the list of benchmark objects in a research answer.
func benchmarkList(doc json.RawMessage) ([]json.RawMessage, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(doc, &list); err == nil {
		return list, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, false
	}
	if raw, ok := obj["benchmarks"]; ok {
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, true
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := json.Unmarshal(obj[k], &list); err == nil {
			return list, true
		}
	}
	return nil, false
}

func samplesForPrompt(samples []TransactionSample) []map[string]any {
	out := make([]map[string]any, len(samples))
	for i, s := range samples {
		out[i] = map[string]any{
			"date":   s.Date,
			"amount": s.Amount.InexactFloat64(),
			"name":   s.Name,
		}
	}
	return out
}

func alternativesForPrompt(benchmarks []models.MarketBenchmark) []map[string]any {
	out := make([]map[string]any, len(benchmarks))
	for i, b := range benchmarks {
		entry := map[string]any{
			"service_name":  b.ServiceName,
			"tier_name":     b.TierName,
			"monthly_price": b.MonthlyPrice.InexactFloat64(),
			"category":      b.Category,
		}
		if len(b.Features) > 0 {
			entry["features"] = json.RawMessage(b.Features)
		}
		out[i] = entry
	}
	return out
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

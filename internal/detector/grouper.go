package detector

import (
	"strings"

	"github.com/strazyuk/ProjectSpara/internal/models"
)

// merchantSuffixes are stripped from merchant keys, in this order.
var merchantSuffixes = []string{".com", " inc.", " inc"}

// MerchantGroup is the set of transactions sharing one normalized merchant key.
type MerchantGroup struct {
	Key          string
	Transactions []models.Transaction
}

// NormalizeMerchantKey derives the grouping key for a transaction: the
// merchant name when present, else the description, trimmed, lowercased and
// stripped of common company suffixes.
func NormalizeMerchantKey(t models.Transaction) string {
	key := t.Name
	if t.MerchantName != nil && strings.TrimSpace(*t.MerchantName) != "" {
		key = *t.MerchantName
	}

	key = strings.ToLower(strings.TrimSpace(key))
	for _, suffix := range merchantSuffixes {
		key = strings.ReplaceAll(key, suffix, "")
	}
	return key
}

// GroupTransactions groups transactions by exact normalized key. Groups come
// back in order of first appearance and keep the input order inside each
// group. Transactions without any usable name are dropped.
func GroupTransactions(txs []models.Transaction) []MerchantGroup {
	index := make(map[string]int)
	var groups []MerchantGroup

	for _, t := range txs {
		key := NormalizeMerchantKey(t)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MerchantGroup{Key: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

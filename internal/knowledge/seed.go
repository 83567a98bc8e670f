package knowledge

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/strazyuk/ProjectSpara/internal/classifier"
)

// SeedCatalogue is the built-in starting set of benchmarks: leading paid
// tiers next to their free or cheaper replacements.
var SeedCatalogue = []classifier.BenchmarkDraft{
	{ServiceName: "Netflix", TierName: "Standard with ads", MonthlyPrice: price("6.99"), Category: "Entertainment", Features: map[string]any{"ads": true, "resolution": "1080p"}},
	{ServiceName: "Netflix", TierName: "Standard", MonthlyPrice: price("15.49"), Category: "Entertainment", Features: map[string]any{"ads": false, "resolution": "1080p"}},
	{ServiceName: "Hulu", TierName: "With Ads", MonthlyPrice: price("7.99"), Category: "Entertainment", Features: map[string]any{"ads": true}},
	{ServiceName: "Tubi", TierName: "Free (Ad-Supported)", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true, "content": "Movies & TV"}},
	{ServiceName: "Pluto TV", TierName: "Free (Ad-Supported)", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true, "content": "Live TV & Movies"}},
	{ServiceName: "Crackle", TierName: "Free", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true}},
	{ServiceName: "Freevee", TierName: "Free (Amazon)", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true}},

	{ServiceName: "Spotify", TierName: "Individual", MonthlyPrice: price("10.99"), Category: "Entertainment", Features: map[string]any{"users": 1}},
	{ServiceName: "Spotify", TierName: "Duo", MonthlyPrice: price("14.99"), Category: "Entertainment", Features: map[string]any{"users": 2}},
	{ServiceName: "Spotify", TierName: "Family", MonthlyPrice: price("16.99"), Category: "Entertainment", Features: map[string]any{"users": 6}},
	{ServiceName: "Apple Music", TierName: "Individual", MonthlyPrice: price("10.99"), Category: "Entertainment", Features: map[string]any{"users": 1}},
	{ServiceName: "YouTube Music", TierName: "Free", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true, "background_play": false}},
	{ServiceName: "Bandcamp", TierName: "Direct Support", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"model": "Pay what you want"}},
	{ServiceName: "SoundCloud", TierName: "Free", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true}},
	{ServiceName: "Pandora", TierName: "Free", MonthlyPrice: price("0"), Category: "Entertainment", Features: map[string]any{"ads": true, "radio": true}},

	{ServiceName: "Adobe Creative Cloud", TierName: "All Apps", MonthlyPrice: price("54.99"), Category: "Software", Features: map[string]any{"apps": "All"}},
	{ServiceName: "Adobe Creative Cloud", TierName: "Photography Plan", MonthlyPrice: price("9.99"), Category: "Software", Features: map[string]any{"apps": "Lightroom, Photoshop"}},
	{ServiceName: "DaVinci Resolve", TierName: "Free Version", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"replacement_for": "Premiere Pro", "quality": "Professional"}},
	{ServiceName: "GIMP", TierName: "Free (Open Source)", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"replacement_for": "Photoshop"}},
	{ServiceName: "Affinity Photo", TierName: "One-Time Purchase", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"model": "One-time $70", "replacement_for": "Photoshop"}},
	{ServiceName: "Affinity Designer", TierName: "One-Time Purchase", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"model": "One-time $70", "replacement_for": "Illustrator"}},
	{ServiceName: "Inkscape", TierName: "Free (Open Source)", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"replacement_for": "Illustrator"}},
	{ServiceName: "Microsoft 365", TierName: "Personal", MonthlyPrice: price("6.99"), Category: "Software", Features: map[string]any{"users": 1}},
	{ServiceName: "LibreOffice", TierName: "Free (Open Source)", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"replacement_for": "Office"}},
	{ServiceName: "Google Docs", TierName: "Free", MonthlyPrice: price("0"), Category: "Software", Features: map[string]any{"cloud": true}},

	{ServiceName: "Google One", TierName: "Basic (100 GB)", MonthlyPrice: price("1.99"), Category: "Technology", Features: map[string]any{"storage": "100GB"}},
	{ServiceName: "Dropbox", TierName: "Basic", MonthlyPrice: price("0"), Category: "Technology", Features: map[string]any{"storage": "2GB Free"}},
}

// Seed inserts every catalogue entry that is not already present and returns
// the number inserted. It follows the same insert-if-absent rule as research.
func (m *Manager) Seed(ctx context.Context, catalogue []classifier.BenchmarkDraft) int {
	inserted := 0
	for _, d := range catalogue {
		if m.insertIfAbsent(ctx, d, OriginSeed) {
			inserted++
		}
	}
	m.logger.Info("benchmark seeding complete", "candidates", len(catalogue), "inserted", inserted)
	return inserted
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

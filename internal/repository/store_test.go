package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/strazyuk/ProjectSpara/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Transaction{},
		&models.Subscription{},
		&models.MarketBenchmark{},
		&models.BargainCache{},
	))
	return New(db), db
}

func TestStore_TransactionsSince(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.Transaction{
		{UserID: userID, AccountID: "acc", Name: "Netflix.com", Amount: decimal.RequireFromString("15.49"), Date: now.AddDate(0, 0, -10)},
		{UserID: userID, AccountID: "acc", Name: "Netflix.com", Amount: decimal.RequireFromString("15.49"), Date: now.AddDate(0, 0, -400)},
		{UserID: uuid.New(), AccountID: "acc", Name: "Spotify", Amount: decimal.RequireFromString("10.99"), Date: now.AddDate(0, 0, -5)},
	}
	require.NoError(t, db.Create(&rows).Error)

	txs, err := store.TransactionsSince(ctx, userID, now.AddDate(0, 0, -180))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Netflix.com", txs[0].Name)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("15.49")))
}

func TestStore_HasActiveSubscription(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.CreateSubscription(ctx, &models.Subscription{
		UserID: userID, Name: "Netflix", Amount: decimal.RequireFromString("15.49"),
		Frequency: models.FrequencyMonthly, IsActive: true,
	}))
	require.NoError(t, store.CreateSubscription(ctx, &models.Subscription{
		UserID: userID, Name: "Hulu", Amount: decimal.RequireFromString("7.99"),
		Frequency: models.FrequencyMonthly, IsActive: false,
	}))

	found, err := store.HasActiveSubscription(ctx, userID, "netflix")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.HasActiveSubscription(ctx, userID, "Hulu")
	require.NoError(t, err)
	assert.False(t, found, "inactive subscriptions do not block a new one")

	found, err = store.HasActiveSubscription(ctx, uuid.New(), "Netflix")
	require.NoError(t, err)
	assert.False(t, found)

	active, err := store.ActiveSubscriptions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Netflix", active[0].Name)

	all, err := store.ListSubscriptions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	users, err := store.UsersWithActiveSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, users)
}

func TestStore_Benchmarks(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LatestBenchmarkAt(ctx, "Entertainment")
	require.NoError(t, err)
	assert.False(t, ok)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	require.NoError(t, store.CreateBenchmark(ctx, &models.MarketBenchmark{
		ServiceName: "Netflix", TierName: "Standard with ads", MonthlyPrice: decimal.RequireFromString("6.99"),
		Category: "Entertainment", Features: datatypes.JSON(`{"ads":true}`), CreatedAt: older,
	}))
	require.NoError(t, store.CreateBenchmark(ctx, &models.MarketBenchmark{
		ServiceName: "Tubi", TierName: "Free", MonthlyPrice: decimal.Zero,
		Category: "Entertainment", CreatedAt: newer,
	}))

	latest, ok, err := store.LatestBenchmarkAt(ctx, "Entertainment")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, latest.Equal(newer))

	exists, err := store.BenchmarkExists(ctx, "Netflix", "Standard with ads")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.BenchmarkExists(ctx, "Netflix", "Premium")
	require.NoError(t, err)
	assert.False(t, exists)

	byCategory, err := store.BenchmarksByCategory(ctx, "Entertainment")
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byName, err := store.BenchmarksMatchingName(ctx, "netFLIX")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Standard with ads", byName[0].TierName)
	assert.JSONEq(t, `{"ads":true}`, string(byName[0].Features))
}

func TestStore_BargainCacheUpsert(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	row, err := store.GetBargainCache(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, row)

	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveBargainCache(ctx, &models.BargainCache{
		UserID: userID,
		Data: datatypes.NewJSONType([]models.BargainOpportunity{{
			SubscriptionID: uuid.New(), Original: "Netflix Standard - $15.49", Alternative: "Netflix with ads - $6.99",
			MonthlySavings: decimal.RequireFromString("8.50"), Reason: "ad-supported plan", Type: models.BargainDowngrade,
		}}),
		LastCheckedAt: first,
	}))

	second := first.Add(30 * time.Hour)
	require.NoError(t, store.SaveBargainCache(ctx, &models.BargainCache{
		UserID:        userID,
		Data:          datatypes.NewJSONType([]models.BargainOpportunity{}),
		LastCheckedAt: second,
	}))

	row, err = store.GetBargainCache(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Empty(t, row.Data.Data())
	assert.True(t, row.LastCheckedAt.Equal(second))
}

func TestStore_BenchmarksMatchingNameTreatsWildcardsLiterally(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Netflix", "100% Music", "My_Cloud"} {
		require.NoError(t, store.CreateBenchmark(ctx, &models.MarketBenchmark{
			ServiceName: name, TierName: "Basic", MonthlyPrice: decimal.RequireFromString("4.99"), Category: "Other",
		}))
	}

	percent, err := store.BenchmarksMatchingName(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "100% Music", percent[0].ServiceName)

	wildcardOnly, err := store.BenchmarksMatchingName(ctx, "%")
	require.NoError(t, err)
	require.Len(t, wildcardOnly, 1)
	assert.Equal(t, "100% Music", wildcardOnly[0].ServiceName)

	underscore, err := store.BenchmarksMatchingName(ctx, "y_c")
	require.NoError(t, err)
	require.Len(t, underscore, 1)
	assert.Equal(t, "My_Cloud", underscore[0].ServiceName)

	none, err := store.BenchmarksMatchingName(ctx, "n_tflix")
	require.NoError(t, err)
	assert.Empty(t, none)
}

package detector_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/strazyuk/ProjectSpara/internal/classifier"
	"github.com/strazyuk/ProjectSpara/internal/classifier/testutil"
	"github.com/strazyuk/ProjectSpara/internal/detector"
	"github.com/strazyuk/ProjectSpara/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu        sync.Mutex
	txs       []models.Transaction
	subs      []models.Subscription
	txErr     error
	createErr error
	since     time.Time
}

func (f *fakeStore) TransactionsSince(_ context.Context, userID uuid.UUID, since time.Time) ([]models.Transaction, error) {
	f.since = since
	if f.txErr != nil {
		return nil, f.txErr
	}
	var out []models.Transaction
	for _, t := range f.txs {
		if t.UserID == userID && !t.Date.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) HasActiveSubscription(_ context.Context, userID uuid.UUID, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.UserID == userID && s.IsActive && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, *sub)
	return nil
}

func strPtr(s string) *string { return &s }

func tx(userID uuid.UUID, merchant *string, name, amount string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		MerchantName: merchant,
		Name:         name,
		Amount:       decimal.RequireFromString(amount),
		Date:         date,
	}
}

func netflixMonthly(userID uuid.UUID, months int) []models.Transaction {
	out := make([]models.Transaction, 0, months)
	for i := months; i > 0; i-- {
		out = append(out, tx(userID, strPtr("Netflix"), "NETFLIX.COM", "15.49", now.AddDate(0, 0, -7*i)))
	}
	return out
}

const netflixVerdict = `{"is_subscription": true, "normalized_name": "Netflix", "category": "Entertainment", "confidence": 0.95}`

func TestDetect_NetflixEndToEnd(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{txs: netflixMonthly(userID, 24)}
	mock := &testutil.MockCompleter{Replies: []testutil.Reply{{Content: netflixVerdict}}}
	d := detector.New(store, classifier.NewClient(mock, nil), nil, detector.WithClock(func() time.Time { return now }))

	res, err := d.Detect(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Detected)
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, mock.CallCount())

	require.Len(t, store.subs, 1)
	sub := store.subs[0]
	assert.Equal(t, "Netflix", sub.Name)
	assert.Equal(t, "netflix", sub.MerchantName)
	assert.Equal(t, "Entertainment", sub.Category)
	assert.Equal(t, models.FrequencyMonthly, sub.Frequency)
	assert.True(t, sub.IsActive)
	assert.True(t, decimal.RequireFromString("15.49").Equal(sub.Amount), "amount %s", sub.Amount)
}

func TestDetect_IsIdempotent(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{txs: netflixMonthly(userID, 3)}
	mock := &testutil.MockCompleter{Fallback: testutil.Reply{Content: netflixVerdict}}
	d := detector.New(store, classifier.NewClient(mock, nil), nil, detector.WithClock(func() time.Time { return now }))

	first, err := d.Detect(context.Background(), userID)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Saved)
	assert.Equal(t, 1, second.Detected)
	assert.Equal(t, 0, second.Saved)
	assert.Len(t, store.subs, 1)
}

func TestDetect_UsesWindow(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{}
	d := detector.New(store, classifier.NewClient(&testutil.MockCompleter{}, nil), nil,
		detector.WithClock(func() time.Time { return now }),
		detector.WithWindow(30*24*time.Hour),
	)

	res, err := d.Detect(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, &detector.Result{}, res)
	assert.Equal(t, now.Add(-30*24*time.Hour), store.since)
}

func TestDetect_SkipsSingletonsAndRejections(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{txs: []models.Transaction{
		tx(userID, nil, "Corner Cafe", "4.50", now.AddDate(0, 0, -3)),
		tx(userID, nil, "Whole Foods", "82.10", now.AddDate(0, 0, -20)),
		tx(userID, nil, "Whole Foods", "64.33", now.AddDate(0, 0, -10)),
		tx(userID, strPtr("Spotify"), "SPOTIFY USA", "11.99", now.AddDate(0, -2, 0)),
		tx(userID, strPtr("Spotify"), "SPOTIFY USA", "11.99", now.AddDate(0, -1, 0)),
	}}
	mock := &testutil.MockCompleter{Replies: []testutil.Reply{
		{Content: `{"is_subscription": false, "normalized_name": "", "category": "Groceries", "confidence": 0.9}`},
		{Err: errors.New("upstream timeout")},
	}}
	d := detector.New(store, classifier.NewClient(mock, nil), nil, detector.WithClock(func() time.Time { return now }))

	res, err := d.Detect(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount(), "the single cafe charge must not be classified")
	assert.Equal(t, 0, res.Detected)
	assert.Equal(t, 0, res.Saved)
	assert.Empty(t, store.subs)
}

func TestDetect_TransactionReadFails(t *testing.T) {
	store := &fakeStore{txErr: errors.New("connection refused")}
	d := detector.New(store, classifier.NewClient(&testutil.MockCompleter{}, nil), nil)

	res, err := d.Detect(context.Background(), uuid.New())

	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestPersister_StorageFailureSkips(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{createErr: errors.New("disk full")}
	p := detector.NewPersister(store, nil)

	saved := p.Save(context.Background(), userID, []detector.Detection{{
		Group:   detector.MerchantGroup{Key: "netflix", Transactions: netflixMonthly(userID, 2)},
		Verdict: classifier.Verdict{IsSubscription: true, NormalizedName: "Netflix"},
	}})

	assert.Equal(t, 0, saved)
}

func TestPersister_FirstWins(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{}
	p := detector.NewPersister(store, nil)

	saved := p.Save(context.Background(), userID, []detector.Detection{
		{
			Group: detector.MerchantGroup{Key: "hulu", Transactions: []models.Transaction{
				tx(userID, nil, "Hulu", "10.00", now), tx(userID, nil, "Hulu", "12.00", now),
			}},
			Verdict: classifier.Verdict{IsSubscription: true, NormalizedName: "Hulu", Category: "Entertainment"},
		},
		{
			Group: detector.MerchantGroup{Key: "hulu llc", Transactions: []models.Transaction{
				tx(userID, nil, "Hulu LLC", "99.00", now), tx(userID, nil, "Hulu LLC", "99.00", now),
			}},
			Verdict: classifier.Verdict{IsSubscription: true, NormalizedName: "HULU", Category: "Other"},
		},
	})

	assert.Equal(t, 1, saved)
	require.Len(t, store.subs, 1)
	assert.Equal(t, "hulu", store.subs[0].MerchantName)
	assert.True(t, decimal.NewFromInt(11).Equal(store.subs[0].Amount))
}

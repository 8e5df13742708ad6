package services

import (
	"context"
	"testing"
	"time"

	"assetmanager/src/cache"
	"assetmanager/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentPricesPrefersCache(t *testing.T) {
	ctx := context.Background()
	stocks := cache.NewNamespace[models.Observation](cache.NewMemoryStore(), cache.StockPrefix, time.Minute)
	snapshots := newFakeSnapshotRepo()
	require.NoError(t, snapshots.BulkUpsert(ctx, models.Daily, []models.PriceSnapshot{
		{Code: "005930", Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), ClosePrice: d("80000")},
		{Code: "000660", Date: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), ClosePrice: d("230000")},
		{Code: "000660", Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), ClosePrice: d("234500")},
	}))
	require.NoError(t, stocks.Put(ctx, "005930", models.Observation{Symbol: "005930", Value: d("81200"), Timestamp: time.Now()}))

	prices, err := NewPriceService(stocks, snapshots).GetCurrentPrices(ctx, []string{"005930", "000660", "035420"})
	require.NoError(t, err)

	assert.Len(t, prices, 2)
	assert.True(t, prices["005930"].Equal(d("81200")))
	assert.True(t, prices["000660"].Equal(d("234500")))
	_, ok := prices["035420"]
	assert.False(t, ok)
}
